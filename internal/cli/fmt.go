package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/specialistvlad/radgo/internal/fsutil"
	"github.com/specialistvlad/radgo/internal/hcl"
	"github.com/spf13/cobra"
)

type fmtFlags struct {
	write bool
	list  bool
}

func fmtCmd() *cobra.Command {
	var f fmtFlags
	cmd := &cobra.Command{
		Use:   "fmt <path>...",
		Short: "Rewrite HCL request documents in canonical style",
		Long: "Fmt formats .hcl request documents. By default the result is printed; with\n" +
			"--write files are rewritten in place and with --list only the names of files\n" +
			"whose formatting differs are printed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, f)
		},
	}
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "Write the result back to the source file.")
	cmd.Flags().BoolVarP(&f.list, "list", "l", false, "List files whose formatting differs; exit with code 1 if any.")
	return cmd
}

func runFmt(cmd *cobra.Command, paths []string, f fmtFlags) error {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, ".hcl")
		if err != nil {
			return fmt.Errorf("searching %s: %w", p, err)
		}
		files = append(files, found...)
	}

	w := cmd.OutOrStdout()
	unformatted := 0
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		out, err := hcl.Format(src, file)
		if err != nil {
			return err
		}
		changed := !bytes.Equal(src, out)
		switch {
		case f.list:
			if changed {
				unformatted++
				fmt.Fprintln(w, file)
			}
		case f.write:
			if changed {
				if err := os.WriteFile(file, out, 0o644); err != nil {
					return err
				}
			}
		default:
			if _, err := w.Write(out); err != nil {
				return err
			}
		}
	}
	if unformatted > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d file(s) need formatting", unformatted)}
	}
	return nil
}
