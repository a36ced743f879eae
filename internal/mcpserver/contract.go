package mcpserver

// DocumentFormatContract describes the JSON document that import_document
// accepts and export_document produces.
const DocumentFormatContract = `# Linkvault Document Format

A vault is a single JSON object with one key, ` + "`" + `groups` + "`" + `: an ordered
array of sections. Each section holds an ordered array of links.

## Structure

` + "```" + `json
{
  "groups": [
    {
      "id": "k3j9x0a1b",
      "name": "AI tools",
      "emoji": "🤖",
      "color": "#c9a84c",
      "isOpen": true,
      "links": [
        { "id": "p0q1r2s3t", "name": "Claude", "url": "https://claude.ai" }
      ]
    }
  ]
}
` + "```" + `

## Rules

1. **` + "`" + `groups` + "`" + ` is mandatory** and must be an array. Anything else is rejected
   and the current vault is left untouched.
2. **IDs are optional on import.** Missing IDs are generated. IDs must be unique
   across all sections and links of the document.
3. **` + "`" + `name` + "`" + ` is required for sections.** Blank ` + "`" + `emoji` + "`" + ` becomes 📁 and blank
   ` + "`" + `color` + "`" + ` becomes #c9a84c. Colors are hex (` + "`" + `#rgb` + "`" + ` or ` + "`" + `#rrggbb` + "`" + `).
4. **` + "`" + `isOpen` + "`" + ` defaults to false** when missing.
5. **Link URLs without a scheme get https://.** A blank link name becomes the
   URL's domain without a leading ` + "`" + `www.` + "`" + `.
6. **Every link belongs to exactly one section.** Order inside ` + "`" + `groups` + "`" + ` and
   inside ` + "`" + `links` + "`" + ` is the display order.

## Password and confirmations

Editing, moving or deleting existing entries, export, import and clear may
require the vault password. Such tools answer with ` + "`" + `"status": "auth_required"` + "`" + `;
call ` + "`" + `unlock` + "`" + ` with the password to resume the operation. Deletions answer
with ` + "`" + `"status": "confirm_required"` + "`" + ` and a ticket; call ` + "`" + `confirm` + "`" + ` with that
ticket to carry them out.
`
