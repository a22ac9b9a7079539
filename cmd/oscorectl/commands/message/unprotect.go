package message

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/coapsec/oscore/internal/cli/output"
	"github.com/coapsec/oscore/internal/coap"
	"github.com/coapsec/oscore/internal/oscoreopt"
	"github.com/spf13/cobra"
)

var (
	unprotectPIVHex     string
	unprotectKIDHex     string
	unprotectKIDPresent bool
	unprotectCiphertext string
	unprotectTokenHex   string
	unprotectMessageID  uint16
	unprotectExtraOpts  []string
	unprotectOutputMode string
)

var unprotectCmd = &cobra.Command{
	Use:   "unprotect",
	Short: "Unprotect a hand-built OSCORE message",
	Long: `Assemble an inbound OSCORE message from its Partial IV, kid, ciphertext
payload, and any outer Class U options, run it through Endpoint.Unprotect
(§4.12), and print the recovered CoAP code/options/payload.

The most common use is round-tripping the output of "oscorectl protect"
run against the peer endpoint (same master_secret, sender_id and
recipient_id swapped): copy its request_piv into --piv, its request_kid
into --kid, and its payload_hex into --ciphertext.

Examples:
  oscorectl unprotect --piv 01 --kid 02 --ciphertext <hex>`,
	RunE: runUnprotect,
}

func init() {
	unprotectCmd.Flags().StringVar(&unprotectPIVHex, "piv", "", "Partial IV, hex-encoded (required)")
	unprotectCmd.Flags().StringVar(&unprotectKIDHex, "kid", "", "kid (Sender ID), hex-encoded")
	unprotectCmd.Flags().BoolVar(&unprotectKIDPresent, "kid-present", true, "Whether the kid flag is set (false omits kid entirely, distinct from an empty kid)")
	unprotectCmd.Flags().StringVar(&unprotectCiphertext, "ciphertext", "", "Ciphertext payload, hex-encoded (required)")
	unprotectCmd.Flags().StringVar(&unprotectTokenHex, "token", "", "CoAP token, hex-encoded")
	unprotectCmd.Flags().Uint16Var(&unprotectMessageID, "message-id", 1, "CoAP Message ID")
	unprotectCmd.Flags().StringSliceVar(&unprotectExtraOpts, "extra-option", nil, `Outer Class U option as "number:hex" (repeatable)`)
	unprotectCmd.Flags().StringVarP(&unprotectOutputMode, "output", "o", "table", "Output format (table|json|yaml)")

	_ = unprotectCmd.MarkFlagRequired("piv")
	_ = unprotectCmd.MarkFlagRequired("ciphertext")
}

func runUnprotect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ep, closeFn, err := openEndpoint(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	piv, err := hex.DecodeString(unprotectPIVHex)
	if err != nil {
		return fmt.Errorf("--piv: %w", err)
	}
	kid, err := hex.DecodeString(unprotectKIDHex)
	if err != nil {
		return fmt.Errorf("--kid: %w", err)
	}
	ciphertext, err := hex.DecodeString(unprotectCiphertext)
	if err != nil {
		return fmt.Errorf("--ciphertext: %w", err)
	}
	token, err := hex.DecodeString(unprotectTokenHex)
	if err != nil {
		return fmt.Errorf("--token: %w", err)
	}

	extra, err := parseExtraOptions(unprotectExtraOpts)
	if err != nil {
		return err
	}

	oscoreVal, err := oscoreopt.Encode(oscoreopt.Value{
		PartialIV:  piv,
		KID:        kid,
		KIDPresent: unprotectKIDPresent,
	}, false)
	if err != nil {
		return fmt.Errorf("encoding oscore option: %w", err)
	}

	opts := append(extra, coap.Option{Number: coap.OptionOSCORE, Value: oscoreVal})
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Number < opts[j].Number })

	msg := &coap.Message{
		Version:   1,
		Type:      0,
		Token:     token,
		MessageID: unprotectMessageID,
		Code:      coap.CodePOST,
		Options:   opts,
		Payload:   ciphertext,
	}

	inner, reqCtx, err := ep.Unprotect(ctx, msg)
	if err != nil {
		return fmt.Errorf("unprotect: %w", err)
	}

	result := messageView{
		Version:    inner.Version,
		Type:       inner.Type,
		Token:      hex.EncodeToString(inner.Token),
		MessageID:  inner.MessageID,
		Code:       fmt.Sprintf("0x%02x", inner.Code),
		Options:    optionRows(inner.Options),
		PayloadHex: hex.EncodeToString(inner.Payload),
		RequestKID: hex.EncodeToString(reqCtx.KID),
		RequestPIV: hex.EncodeToString(reqCtx.PartialIV),
	}

	format, err := output.ParseFormat(unprotectOutputMode)
	if err != nil {
		return err
	}
	return output.NewPrinter(os.Stdout, format).Print(result)
}

// parseExtraOptions parses "number:hex" entries into coap.Options.
func parseExtraOptions(entries []string) (coap.Options, error) {
	var opts coap.Options
	for _, e := range entries {
		parts := strings.SplitN(e, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("--extra-option %q: expected \"number:hex\"", e)
		}
		num, err := strconv.ParseUint(parts[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("--extra-option %q: invalid option number: %w", e, err)
		}
		val, err := hex.DecodeString(parts[1])
		if err != nil {
			return nil, fmt.Errorf("--extra-option %q: invalid hex value: %w", e, err)
		}
		opts = append(opts, coap.Option{Number: uint16(num), Value: val})
	}
	return opts, nil
}
