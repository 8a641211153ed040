package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/specialistvlad/radgo/internal/format"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/spf13/cobra"
)

func encodeCmd() *cobra.Command {
	var withHash bool
	cmd := &cobra.Command{
		Use:   "encode <json>",
		Short: "Print the canonical CBOR encoding of a value",
		Long: "Encode parses a JSON value and prints its canonical CBOR encoding as hex, the\n" +
			"form witnesses commit to. With --hash it also prints the SHA-256 of the encoding.",
		Example: `  radgo encode '{"price": 100.5}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[0])
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			data, err := radon.Encode(v)
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "0x%s\n", hex.EncodeToString(data))
			if withHash {
				sum, err := radon.Hash(v)
				if err != nil {
					return fmt.Errorf("hash: %w", err)
				}
				fmt.Fprintf(w, "sha256: 0x%s\n", hex.EncodeToString(sum[:]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withHash, "hash", false, "Also print the SHA-256 of the encoding.")
	return cmd
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "decode <hex>",
		Short:   "Decode a CBOR value and print it as JSON",
		Example: "  radgo decode 0x1864",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue("0x" + strings.TrimPrefix(args[0], "0x"))
			if err != nil {
				return &ExitError{Code: 2, Message: fmt.Sprintf("decode: %v", err)}
			}
			return format.JSON(cmd.OutOrStdout(), format.JSONValue(v))
		},
	}
}
