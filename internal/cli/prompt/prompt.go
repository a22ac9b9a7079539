// Package prompt provides the interactive terminal prompts oscorectl init
// uses to collect security context material from an operator instead of
// generating it (§4.16), adapted from the teacher's promptui-based
// input/confirm/password helpers down to the one shape this module needs:
// validated hex input.
package prompt

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err indicates the user aborted the prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Hex prompts for a hex-encoded byte string of exactly n bytes (2n hex
// digits) when n > 0, or any even-length hex string (including empty)
// when n == 0.
func Hex(label string, n int) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input)%2 != 0 {
				return fmt.Errorf("must have an even number of hex digits")
			}
			b, err := hex.DecodeString(input)
			if err != nil {
				return fmt.Errorf("must be valid hex: %w", err)
			}
			if n > 0 && len(b) != n {
				return fmt.Errorf("must be exactly %d bytes (%d hex digits)", n, n*2)
			}
			return nil
		},
	}
	result, err := p.Run()
	return result, wrapError(err)
}

// HexOptional prompts for an optional hex-encoded byte string; an empty
// response is accepted as "absent".
func HexOptional(label string) (string, error) {
	p := promptui.Prompt{
		Label: label + " (optional)",
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			if len(input)%2 != 0 {
				return fmt.Errorf("must have an even number of hex digits")
			}
			if _, err := hex.DecodeString(input); err != nil {
				return fmt.Errorf("must be valid hex: %w", err)
			}
			return nil
		},
	}
	result, err := p.Run()
	return result, wrapError(err)
}

// Confirm prompts for yes/no confirmation, defaulting to defaultYes.
func Confirm(label string, defaultYes bool) (bool, error) {
	defaultStr := "y/N"
	if defaultYes {
		defaultStr = "Y/n"
	}
	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, defaultStr),
		IsConfirm: true,
	}
	result, err := p.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			return false, ErrAborted
		}
		if err == promptui.ErrAbort {
			if result == "" {
				return defaultYes, nil
			}
			return false, nil
		}
		return false, err
	}
	return true, nil
}
