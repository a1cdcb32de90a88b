package cmd

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/typecodec/internal/codec/slugid"
)

var slugidCmd = &cobra.Command{
	Use:   "slugid",
	Short: "Generate or decode slug-form identifiers",
}

var slugidGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random slug",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		raw := make([]byte, slugid.Size)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("generate random id: %w", err)
		}
		raw[6] = raw[6]&0x0f | 0x40
		raw[8] = raw[8]&0x3f | 0x80
		slug, err := slugid.Encode(raw)
		if err != nil {
			return err
		}
		fmt.Println(slug)
		return nil
	},
}

var slugidDecodeCmd = &cobra.Command{
	Use:   "decode <slug>",
	Short: "Decode a slug to its raw hex bytes",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		raw, err := slugid.Decode(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%x\n", raw)
		return nil
	},
}

func init() {
	slugidCmd.AddCommand(slugidGenCmd)
	slugidCmd.AddCommand(slugidDecodeCmd)
}
