package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/linkvault/internal"
	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/prompt"
	"github.com/starford/linkvault/internal/render"
	"github.com/starford/linkvault/internal/vault"
)

// vaultAction opens the vault for one command and closes it afterwards.
// Logs go to stderr so stdout carries only command output.
func vaultAction(fn func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sess, err := internal.Open(ctx, []internal.Option{
			internal.WithConfig(cfg),
			internal.WithLogOutput(os.Stderr),
		})
		if err != nil {
			return err
		}
		defer func() { _ = sess.Close() }()

		return fn(ctx, cmd, sess.Vault, prompt.New(os.Stdin, os.Stderr))
	}
}

// finish resolves prompts for out and prints msg on success.
func finish(ctx context.Context, v *vault.Vault, p *prompt.Prompter, msg string, out vault.Outcome, err error) error {
	if _, err := p.Drive(ctx, v, out, err); err != nil {
		return err
	}
	render.Success(os.Stdout, msg)
	return nil
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.Args().Len() < n {
		return fmt.Errorf("expected %d argument(s): %s", n, cmd.ArgsUsage)
	}
	return nil
}

func sectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "emoji", Usage: "Section emoji"},
		&cli.StringFlag{Name: "color", Usage: "Section color as #rrggbb"},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Show sections and links",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Expand collapsed sections"},
			&cli.BoolFlag{Name: "ids", Usage: "Print IDs"},
		},
		Action: vaultAction(func(_ context.Context, cmd *cli.Command, v *vault.Vault, _ *prompt.Prompter) error {
			return render.Render(os.Stdout, v.View(), render.Options{All: cmd.Bool("all"), ShowIDs: cmd.Bool("ids")})
		}),
	}
}

func sectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "section",
		Usage: "Manage sections",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a section",
				ArgsUsage: "<name>",
				Flags:     sectionFlags(),
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					in := document.SectionInput{
						Name:  strings.Join(cmd.Args().Slice(), " "),
						Emoji: cmd.String("emoji"),
						Color: cmd.String("color"),
					}
					out, err := v.CreateSection(ctx, in)
					return finish(ctx, v, p, "section created", out, err)
				}),
			},
			{
				Name:      "rename",
				Usage:     "Edit a section's name, emoji or color",
				ArgsUsage: "<section-id> <name>",
				Flags:     sectionFlags(),
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					in := document.SectionInput{
						Name:  strings.Join(cmd.Args().Slice()[1:], " "),
						Emoji: cmd.String("emoji"),
						Color: cmd.String("color"),
					}
					out, err := v.RenameSection(ctx, cmd.Args().First(), in)
					return finish(ctx, v, p, "section updated", out, err)
				}),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a section and its links",
				ArgsUsage: "<section-id>",
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					out, err := v.DeleteSection(ctx, cmd.Args().First())
					return finish(ctx, v, p, "section deleted", out, err)
				}),
			},
			sectionOpenCommand("open", "Expand a section", "section opened", true),
			sectionOpenCommand("close", "Collapse a section", "section closed", false),
			{
				Name:      "move",
				Usage:     "Shift a section to the position of another",
				ArgsUsage: "<section-id> <target-section-id>",
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					out, err := v.MoveSection(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
					return finish(ctx, v, p, "section moved", out, err)
				}),
			},
		},
	}
}

func sectionOpenCommand(name, usage, done string, open bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<section-id>",
		Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			out, err := v.SetSectionOpen(ctx, cmd.Args().First(), open)
			return finish(ctx, v, p, done, out, err)
		}),
	}
}

func linkCommand() *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Manage links",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Append a link to a section",
				ArgsUsage: "<section-id> <url>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "name", Usage: "Display name, defaults to the domain"}},
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					in := document.LinkInput{URL: cmd.Args().Get(1), Name: cmd.String("name")}
					out, err := v.AddLink(ctx, cmd.Args().Get(0), in)
					return finish(ctx, v, p, "link added", out, err)
				}),
			},
			{
				Name:      "edit",
				Usage:     "Edit a link, optionally moving it",
				ArgsUsage: "<link-id> <url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name, defaults to the domain"},
					&cli.StringFlag{Name: "section", Usage: "Move to this section"},
				},
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					in := document.LinkInput{URL: cmd.Args().Get(1), Name: cmd.String("name")}
					out, err := v.UpdateLink(ctx, cmd.Args().Get(0), in, cmd.String("section"))
					return finish(ctx, v, p, "link updated", out, err)
				}),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a link",
				ArgsUsage: "<section-id> <link-id>",
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					out, err := v.DeleteLink(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
					return finish(ctx, v, p, "link deleted", out, err)
				}),
			},
			{
				Name:      "move",
				Usage:     "Move links to the end of a section",
				ArgsUsage: "<target-section-id> <link-id>...",
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					args := cmd.Args().Slice()
					out, err := v.MoveLinks(ctx, args[1:], args[0])
					return finish(ctx, v, p, "links moved", out, err)
				}),
			},
			{
				Name:      "remove",
				Usage:     "Delete several links at once",
				ArgsUsage: "<link-id>...",
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					v.ToggleSelection()
					for _, id := range cmd.Args().Slice() {
						if err := selectLink(ctx, v, id); err != nil {
							return err
						}
					}
					out, err := v.DeleteSelected(ctx)
					return finish(ctx, v, p, "links deleted", out, err)
				}),
			},
			{
				Name:      "swap",
				Usage:     "Exchange the positions of two links",
				ArgsUsage: "<section-id> <link-id> <section-id> <link-id>",
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					if err := requireArgs(cmd, 4); err != nil {
						return err
					}
					a := cmd.Args().Slice()
					out, err := v.SwapLinks(ctx, a[0], a[1], a[2], a[3])
					return finish(ctx, v, p, "links swapped", out, err)
				}),
			},
			{
				Name:      "open",
				Usage:     "Print a link's URL",
				ArgsUsage: "<section-id> <link-id>",
				Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, _ *prompt.Prompter) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					out, err := v.Activate(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
					if err != nil {
						return err
					}
					if res, ok := out.Result.(vault.ActivateResult); ok && res.URL != "" {
						_, _ = fmt.Fprintln(os.Stdout, res.URL)
					}
					return nil
				}),
			},
		},
	}
}

// selectLink activates a link in selection mode, locating its section first.
func selectLink(ctx context.Context, v *vault.Vault, linkID string) error {
	doc := v.View().Document
	si, _, ok := doc.LocateLink(linkID)
	if !ok {
		return apperr.NotFound("link", linkID)
	}
	_, err := v.Activate(ctx, doc.Groups[si].ID, linkID)
	return err
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the vault to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   `Output file, "-" for stdout`,
				Value:   document.ExportFilename,
			},
		},
		Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
			out, err := v.Export(ctx)
			out, err = p.Drive(ctx, v, out, err)
			if err != nil {
				return err
			}
			res, ok := out.Result.(vault.ExportResult)
			if !ok {
				return fmt.Errorf("unexpected export result")
			}
			dest := cmd.String("out")
			if dest == "-" {
				_, err := os.Stdout.Write(res.Data)
				return err
			}
			if err := os.WriteFile(dest, res.Data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			render.Success(os.Stdout, "exported to "+dest)
			return nil
		}),
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the vault with a JSON backup",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "if-match", Usage: "Only import if the current checksum matches"},
		},
		Action: vaultAction(func(ctx context.Context, cmd *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			data, err := os.ReadFile(cmd.Args().First())
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			out, err := v.Import(ctx, data, cmd.String("if-match"))
			return finish(ctx, v, p, "vault imported", out, err)
		}),
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every section and link",
		Action: vaultAction(func(ctx context.Context, _ *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
			out, err := v.Clear(ctx)
			return finish(ctx, v, p, "vault cleared", out, err)
		}),
	}
}

func passwordCommand() *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "Manage the edit password",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set or change the password",
				Action: vaultAction(func(ctx context.Context, _ *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					var old string
					if v.AuthState() != auth.NoPassword {
						var err error
						if old, err = p.Password("Current password"); err != nil {
							return err
						}
					}
					pw, err := p.Password("New password")
					if err != nil {
						return err
					}
					confirm, err := p.Password("Repeat new password")
					if err != nil {
						return err
					}
					out, err := v.SetPassword(ctx, old, pw, confirm)
					return finish(ctx, v, p, "password set", out, err)
				}),
			},
			{
				Name:  "remove",
				Usage: "Remove the password",
				Action: vaultAction(func(ctx context.Context, _ *cli.Command, v *vault.Vault, p *prompt.Prompter) error {
					old, err := p.Password("Current password")
					if err != nil {
						return err
					}
					out, err := v.RemovePassword(ctx, old)
					return finish(ctx, v, p, "password removed", out, err)
				}),
			},
		},
	}
}
