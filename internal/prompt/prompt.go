// Package prompt asks for passwords and confirmations on a terminal and uses
// the answers to finish operations that were waiting for them.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/vault"
)

// MaxAttempts bounds password retries before the pending operation is dropped.
const MaxAttempts = 3

// ErrCancelled is returned when the user declines a prompt.
var ErrCancelled = errors.New("cancelled")

// Resolver finishes operations that answered auth_required or
// confirm_required. *vault.Vault implements it.
type Resolver interface {
	Unlock(ctx context.Context, password string) (vault.Outcome, error)
	Confirm(ctx context.Context, ticket string) (vault.Outcome, error)
	CancelAuth() bool
	Dismiss() bool
}

// Prompter reads answers from in and writes questions to out.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// New returns a Prompter on a file, usually os.Stdin. Password input is not
// echoed when in is a terminal.
func New(in *os.File, out io.Writer) *Prompter {
	fd := int(in.Fd())
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd, isTerm: term.IsTerminal(fd)}
}

// NewReader returns a Prompter on a plain reader. Passwords are read as lines.
func NewReader(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password asks for a secret.
func (p *Prompter) Password(label string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s: ", label)
	if !p.isTerm {
		return p.readLine()
	}
	b, err := term.ReadPassword(p.fd)
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	_, _ = fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Drive keeps answering prompts until out is done or the user gives up.
// A blank password or a "no" drops the pending operation and returns
// ErrCancelled.
func (p *Prompter) Drive(ctx context.Context, r Resolver, out vault.Outcome, err error) (vault.Outcome, error) {
	attempts := 0
	for err == nil {
		switch out.Status {
		case vault.StatusAuthRequired:
			pw, perr := p.Password("Vault password")
			if perr != nil {
				r.CancelAuth()
				return vault.Outcome{}, perr
			}
			if pw == "" {
				r.CancelAuth()
				return vault.Outcome{}, ErrCancelled
			}
			next, uerr := r.Unlock(ctx, pw)
			if errors.Is(uerr, apperr.ErrInvalidCredential) {
				attempts++
				if attempts >= MaxAttempts {
					r.CancelAuth()
					return vault.Outcome{}, uerr
				}
				_, _ = fmt.Fprintln(p.out, apperr.Message(uerr))
				continue
			}
			out, err = next, uerr

		case vault.StatusConfirmRequired:
			yes, cerr := p.Confirm(out.Confirmation.Message)
			if cerr != nil {
				r.Dismiss()
				return vault.Outcome{}, cerr
			}
			if !yes {
				r.Dismiss()
				return vault.Outcome{}, ErrCancelled
			}
			out, err = r.Confirm(ctx, out.Confirmation.Ticket)

		default:
			return out, nil
		}
	}
	return out, err
}
