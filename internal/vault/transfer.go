package vault

import (
	"context"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/checksum"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/models"
)

func ref(sectionID, linkID string) models.LinkRef {
	return models.LinkRef{SectionID: sectionID, LinkID: linkID}
}

// Export serializes the document. Requires auth.
func (v *Vault) Export(ctx context.Context) (Outcome, error) {
	return v.gated(ctx, "export", func(context.Context) (Outcome, error) {
		v.mu.Lock()
		defer v.mu.Unlock()

		data, err := v.docs.Export()
		if err != nil {
			return Outcome{}, err
		}
		return Done(ExportResult{
			Filename: document.ExportFilename,
			Checksum: v.docs.Checksum(),
			Data:     data,
		}), nil
	})
}

// Import replaces the document with data. ifMatch, when set, must match the
// checksum of the current document. The payload is checked before the password
// is asked for. Requires auth.
func (v *Vault) Import(ctx context.Context, data []byte, ifMatch string) (Outcome, error) {
	v.mu.Lock()
	_, err := v.docs.Validate(data)
	v.mu.Unlock()
	if err != nil {
		return v.record("import", Outcome{}, err)
	}

	return v.gated(ctx, "import", func(ctx context.Context) (Outcome, error) {
		v.mu.Lock()
		defer v.mu.Unlock()

		if !checksum.Match(ifMatch, v.docs.Checksum()) {
			return Outcome{}, apperr.ErrConflict
		}
		doc, err := v.docs.Import(ctx, data)
		if !mutated(err) {
			return Outcome{}, err
		}
		v.exitModesLocked()
		v.changed(ChangeDocument, "")
		return Done(doc), err
	})
}

// Clear empties the document. Requires auth and confirmation.
func (v *Vault) Clear(ctx context.Context) (Outcome, error) {
	return v.gated(ctx, "clear", func(context.Context) (Outcome, error) {
		v.mu.Lock()
		defer v.mu.Unlock()

		return v.requestConfirm("clear", "Delete all sections and links?", func(ctx context.Context) (Outcome, error) {
			err := v.docs.Clear(ctx)
			if !mutated(err) {
				return Outcome{}, err
			}
			v.exitModesLocked()
			v.changed(ChangeDocument, "")
			return Done(nil), err
		})
	})
}
