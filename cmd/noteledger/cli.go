package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/noteledger/internal/config"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/ops"
	"github.com/hpungsan/noteledger/internal/user"
	"github.com/hpungsan/noteledger/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, exportsDir string) *cli.App {
	app := &cli.App{
		Name:    "noteledger",
		Usage:   "Personal notes, ordered and owned",
		Version: Version,
		Commands: []*cli.Command{
			userCmd(db),
			categoryCmd(db, cfg),
			noteCmd(db, cfg),
			importCmd(db, cfg),
			exportCmd(db, cfg, exportsDir),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// userFlag selects the acting account by email. Falls back to the config
// default_user; commands never take a raw owner id.
func userFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Acting account email (default: config default_user)",
	}
}

// resolveOwner maps the --user flag (or config default_user) to an owner id.
func resolveOwner(c *cli.Context, db *sql.DB, cfg *config.Config) (int64, error) {
	email := c.String("user")
	if email == "" && cfg != nil {
		email = cfg.DefaultUser
	}
	if email == "" {
		return 0, errors.NewInvalidRequest("no acting user: pass --user or set default_user in config.json")
	}
	u, err := user.FindByEmail(db, email)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// userCmd creates the user command group.
func userCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Email address"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, Usage: "Password (min 8 characters)"},
				},
				Action: func(c *cli.Context) error {
					u, err := user.Register(db, user.RegisterInput{
						Email:    c.String("email"),
						Password: c.String("password"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(u)
				},
			},
		},
	}
}

// categoryCmd creates the category command group.
func categoryCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "category",
		Usage: "Manage categories",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a category",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.CreateCategory(db, ops.CreateCategoryInput{
						OwnerID: ownerID,
						Name:    strings.Join(c.Args().Slice(), " "),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List categories with note counts",
				Flags: []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.ListCategories(db, ops.ListCategoriesInput{OwnerID: ownerID})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "rename",
				Usage:     "Rename a category",
				ArgsUsage: "<id> <new-name>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("usage: category rename <id> <new-name>"))
					}
					id, err := parseID(c.Args().Get(0))
					if err != nil {
						return outputError(err)
					}
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.UpdateCategory(db, ops.UpdateCategoryInput{
						OwnerID:    ownerID,
						CategoryID: id,
						Name:       strings.Join(c.Args().Slice()[1:], " "),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a category and all its notes",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("usage: category rm <id>"))
					}
					id, err := parseID(c.Args().First())
					if err != nil {
						return outputError(err)
					}
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.DestroyCategory(db, ops.DestroyCategoryInput{
						OwnerID:    ownerID,
						CategoryID: id,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// noteCmd creates the note command group.
func noteCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "note",
		Usage: "Manage notes within a category",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a note (content from --content or piped stdin)",
				ArgsUsage: "<category-id>",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Note title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Note body (omit to read from stdin)"},
					&cli.IntFlag{Name: "position", Aliases: []string{"p"}, Usage: "Position (default: append after the last note)"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("usage: note add <category-id> --title ... [--content ...]"))
					}
					catID, err := parseID(c.Args().First())
					if err != nil {
						return outputError(err)
					}
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}

					content := c.String("content")
					if content == "" && stdinHasData() {
						content, err = readStdin()
						if err != nil {
							return outputError(errors.NewInternal(err))
						}
					}

					input := ops.CreateNoteInput{
						OwnerID:    ownerID,
						CategoryID: catID,
						Title:      c.String("title"),
						Content:    content,
					}
					if c.IsSet("position") {
						pos := c.Int("position")
						input.Position = &pos
					}

					output, err := ops.CreateNote(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit a note's title, content, or position",
				ArgsUsage: "<category-id> <note-id>",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "New body"},
					&cli.IntFlag{Name: "position", Aliases: []string{"p"}, Usage: "New position"},
				},
				Action: func(c *cli.Context) error {
					catID, noteID, err := parseIDPair(c)
					if err != nil {
						return outputError(err)
					}
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}

					input := ops.UpdateNoteInput{
						OwnerID:    ownerID,
						CategoryID: catID,
						NoteID:     noteID,
					}
					if c.IsSet("title") {
						title := c.String("title")
						input.Title = &title
					}
					if c.IsSet("content") {
						content := c.String("content")
						input.Content = &content
					}
					if c.IsSet("position") {
						pos := c.Int("position")
						input.Position = &pos
					}

					output, err := ops.UpdateNote(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "move",
				Usage:     "Move a note to a position, shifting the notes at or after it",
				ArgsUsage: "<category-id> <note-id> <position>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() < 3 {
						return outputError(errors.NewInvalidRequest("usage: note move <category-id> <note-id> <position>"))
					}
					catID, noteID, err := parseIDPair(c)
					if err != nil {
						return outputError(err)
					}
					pos, err := strconv.Atoi(c.Args().Get(2))
					if err != nil {
						return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid position %q", c.Args().Get(2))))
					}
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}

					output, err := ops.MoveNote(db, ops.MoveNoteInput{
						OwnerID:     ownerID,
						CategoryID:  catID,
						NoteID:      noteID,
						NewPosition: pos,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a note",
				ArgsUsage: "<category-id> <note-id>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					catID, noteID, err := parseIDPair(c)
					if err != nil {
						return outputError(err)
					}
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.DestroyNote(db, ops.DestroyNoteInput{
						OwnerID:    ownerID,
						CategoryID: catID,
						NoteID:     noteID,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "list",
				Usage:     "List a category's notes in position order",
				ArgsUsage: "<category-id>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("usage: note list <category-id>"))
					}
					catID, err := parseID(c.Args().First())
					if err != nil {
						return outputError(err)
					}
					ownerID, err := resolveOwner(c, db, cfg)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.ListNotes(db, ops.ListNotesInput{
						OwnerID:    ownerID,
						CategoryID: catID,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Merge an exported YAML document (from --path or piped stdin)",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Import file path (omit to read from stdin)"},
		},
		Action: func(c *cli.Context) error {
			ownerID, err := resolveOwner(c, db, cfg)
			if err != nil {
				return outputError(err)
			}

			var data []byte
			if path := c.String("path"); path != "" {
				data, err = os.ReadFile(path)
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot read %s: %v", path, err)))
				}
			} else if stdinHasData() {
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				data = raw
			} else {
				return outputError(errors.NewInvalidRequest("import document must come from --path or piped stdin"))
			}

			output, err := ops.Import(db, ops.ImportInput{
				OwnerID: ownerID,
				Data:    data,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, exportsDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every category and note to a YAML file",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: exports dir, conventional filename)"},
			&cli.BoolFlag{Name: "stdout", Usage: "Write the document to stdout instead of a file"},
		},
		Action: func(c *cli.Context) error {
			ownerID, err := resolveOwner(c, db, cfg)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("stdout") {
				output, err := ops.Export(db, ops.ExportInput{OwnerID: ownerID})
				if err != nil {
					return outputError(err)
				}
				_, err = os.Stdout.Write(output.YAML)
				return err
			}

			output, err := ops.ExportToFile(db, exportsDir, ops.ExportFileInput{
				OwnerID: ownerID,
				Path:    c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the browser UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 3000, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			return web.Run(db, cfg, Version, c.String("bind"), c.Int("port"))
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if lerr, ok := err.(*errors.LedgerError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", lerr.Code, lerr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseID parses a positional id argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

// parseIDPair parses the <category-id> <note-id> positional arguments.
func parseIDPair(c *cli.Context) (int64, int64, error) {
	if c.NArg() < 2 {
		return 0, 0, errors.NewInvalidRequest("expected <category-id> <note-id>")
	}
	catID, err := parseID(c.Args().Get(0))
	if err != nil {
		return 0, 0, err
	}
	noteID, err := parseID(c.Args().Get(1))
	if err != nil {
		return 0, 0, err
	}
	return catID, noteID, nil
}
