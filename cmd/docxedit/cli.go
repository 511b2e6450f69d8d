package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit"
	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/model"
	"github.com/benjaminschreck/go-docxedit/pkg/mcpserver"
)

// newRootCommand creates the root command with every subcommand registered.
func newRootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:           "docxedit",
		Short:         "Read, create and surgically edit .docx files",
		Long:          `docxedit converts Word documents to and from a JSON block tree and applies in-place edits (text replacement, paragraph insertion, image injection) that leave the rest of the archive byte for byte intact.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config, err := docxedit.LoadConfigFile(configPath)
				if err != nil {
					return err
				}
				docxedit.SetGlobalConfig(config)
			}
			docxedit.SetLogger(docxedit.NewLogger(cmd.ErrOrStderr(), log.InfoLevel))
			docxedit.UpdateLoggerFromConfig()
			if verbose {
				docxedit.GetLogger().SetLevel(log.DebugLevel)
			}
			mcpserver.Version = version
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	root.AddCommand(
		inspectCommand(),
		createCommand(),
		replaceCommand(),
		insertCommand(),
		addImageCommand(),
		cleanupCommand(),
		partsCommand(),
		serveCommand(),
		versionCommand(),
	)
	return root
}

func inspectCommand() *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "inspect <file.docx>",
		Short: "Print the document as a JSON block tree",
		Long:  "Print the document as a JSON block tree. Images are extracted to the media directory beside the file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := docxedit.Inspect(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(doc)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON on a single line")
	return cmd
}

func createCommand() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "create <output.docx>",
		Short: "Create a document from a JSON block tree",
		Long:  "Create a document from a JSON block tree read from --input, or from stdin when --input is omitted or \"-\".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var doc model.Document
			if err := json.NewDecoder(r).Decode(&doc); err != nil {
				return fmt.Errorf("decode document: %w", err)
			}

			w := docxedit.NewWriter()
			pkg, err := w.Write(&doc)
			if err != nil {
				return err
			}
			if err := pkg.Save(args[0]); err != nil {
				return err
			}
			for _, warn := range w.Warnings() {
				docxedit.GetLogger().Warn("skipped", "err", warn)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Success: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON document file (default stdin)")
	return cmd
}

// outputFlag registers -o and returns a resolver defaulting to the input
// path, which edits the file in place.
func outputFlag(cmd *cobra.Command) func(input string) string {
	var output string
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the input)")
	return func(input string) string {
		if output == "" {
			return input
		}
		return output
	}
}

func replaceCommand() *cobra.Command {
	var part string
	cmd := &cobra.Command{
		Use:   "replace <file.docx> <search> <replace>",
		Short: "Replace text across runs in every paragraph",
		Args:  cobra.ExactArgs(3),
	}
	output := outputFlag(cmd)
	cmd.Flags().StringVar(&part, "part", "", "limit replacement to one part (e.g. word/document.xml)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var parts []string
		if part != "" {
			parts = append(parts, part)
		}
		n, err := docxedit.ReplaceTextFile(args[0], output(args[0]), args[1], args[2], parts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Surgically updated %d paragraphs.\n", n)
		return nil
	}
	return cmd
}

func insertCommand() *cobra.Command {
	var before bool
	cmd := &cobra.Command{
		Use:   "insert <file.docx> <template-index> <text>",
		Short: "Insert a paragraph styled like an existing one",
		Args:  cobra.ExactArgs(3),
	}
	output := outputFlag(cmd)
	cmd.Flags().BoolVar(&before, "before", false, "insert before the template paragraph instead of after")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid template index %q", args[1])
		}
		idx, err := docxedit.InsertParagraphFile(args[0], output(args[0]), index, args[2], !before)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Success! Paragraph inserted at index %d\n", idx)
		return nil
	}
	return cmd
}

func addImageCommand() *cobra.Command {
	var paragraph, width, height int
	cmd := &cobra.Command{
		Use:   "add-image <file.docx> <image>",
		Short: "Append an inline image to a paragraph",
		Args:  cobra.ExactArgs(2),
	}
	output := outputFlag(cmd)
	cmd.Flags().IntVarP(&paragraph, "paragraph", "p", 0, "index of the target paragraph")
	cmd.Flags().IntVar(&width, "width", 0, "width in pixels (default: from the image)")
	cmd.Flags().IntVar(&height, "height", 0, "height in pixels (default: from the image)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		out := output(args[0])
		relID, err := docxedit.InjectImageFile(args[0], out, args[1], paragraph, width, height)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Image injected with rId: %s. File saved to %s\n", relID, out)
		return nil
	}
	return cmd
}

func cleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <directory>",
		Short: "Remove the extracted media directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := docxedit.CleanupMedia(args[0])
			if err != nil {
				return err
			}
			if existed {
				fmt.Fprintln(cmd.OutOrStdout(), "Media folder cleaned up successfully.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No media folder found.")
			}
			return nil
		},
	}
}

func partsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parts <file.docx>",
		Short: "List the entries of the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := docxedit.ListParts(args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docxedit version %s\n", version)
		},
	}
}
