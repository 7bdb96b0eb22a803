// Package persist serializes and restores a network's mutable
// per-component state: battery charge/temperature, breaker commanded
// state, tie connections, and the persistent failed flag (spec §6
// "Serialization", "Persisted state layout"). The format is a flat,
// line-oriented key-value blob in the teacher's parser style, with an
// explicit start/end marker pair per component and a CRC32 of the
// declarative spec text guarding against loading a snapshot against the
// wrong network.
package persist

import (
	"bufio"
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"

	"github.com/edp1096/elecsim/pkg/network"
)

// Save produces a stable snapshot of every component's mutable state,
// keyed by component name, plus a CRC32 of specText so Load can refuse to
// apply it to a network built from a different declarative spec.
func Save(net *network.Network, specText string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "CRC %08x\n", crc32.ChecksumIEEE([]byte(specText)))

	net.Walk(func(c *network.Component) bool {
		fmt.Fprintf(&b, "BEGIN %s\n", c.Name)
		fmt.Fprintf(&b, "FAILED %t\n", c.Failed())
		switch c.Kind {
		case network.KindBattery:
			fmt.Fprintf(&b, "CHARGE %g\n", c.ChargeFrac())
			fmt.Fprintf(&b, "TEMPC %g\n", c.TempC())
		case network.KindCB, network.KindFuse:
			fmt.Fprintf(&b, "CBSET %t\n", c.Closed())
		case network.KindTie:
			flags := c.TiedFlags()
			parts := make([]string, len(flags))
			for i, f := range flags {
				parts[i] = strconv.FormatBool(f)
			}
			fmt.Fprintf(&b, "TIED %s\n", strings.Join(parts, " "))
		}
		fmt.Fprintf(&b, "END %s\n", c.Name)
		return true
	})

	return []byte(b.String())
}

// Load applies a snapshot produced by Save back onto net, after checking
// its CRC against specText. A mismatched CRC is rejected before anything
// is applied. An unknown component name or a malformed record stops Load
// with an explicit error, but the records before the failing line stay
// applied to net — callers that need an all-or-nothing guarantee should
// Load into a freshly Built network.
func Load(net *network.Network, specText string, blob []byte) error {
	want := fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(specText)))

	scanner := bufio.NewScanner(strings.NewReader(string(blob)))
	lineNo := 0
	var cur string // name of the component currently between BEGIN/END

	nextLine := func() (string, []string, bool) {
		if !scanner.Scan() {
			return "", nil, false
		}
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			return "", nil, true
		}
		return fields[0], fields[1:], true
	}

	kw, args, ok := nextLine()
	if !ok || kw != "CRC" || len(args) != 1 {
		return fmt.Errorf("persist: line %d: expected CRC header", lineNo)
	}
	if args[0] != want {
		return fmt.Errorf("persist: spec CRC mismatch: blob was taken against a different declarative spec")
	}

	for {
		kw, args, ok = nextLine()
		if !ok {
			break
		}
		if kw == "" {
			continue
		}

		switch kw {
		case "BEGIN":
			if cur != "" {
				return fmt.Errorf("persist: line %d: nested BEGIN %s inside %s", lineNo, argOrEmpty(args), cur)
			}
			if len(args) != 1 {
				return fmt.Errorf("persist: line %d: BEGIN needs exactly one name", lineNo)
			}
			if _, ok := net.ByName(args[0]); !ok {
				return fmt.Errorf("persist: line %d: unknown component %q", lineNo, args[0])
			}
			cur = args[0]

		case "END":
			if len(args) != 1 || args[0] != cur {
				return fmt.Errorf("persist: line %d: END %s does not match open BEGIN %s", lineNo, argOrEmpty(args), cur)
			}
			cur = ""

		case "FAILED":
			v, err := parseBool(args, lineNo)
			if err != nil {
				return err
			}
			if err := net.MarkFailed(cur, v); err != nil {
				return fmt.Errorf("persist: line %d: %w", lineNo, err)
			}

		case "CHARGE":
			v, err := parseFloat(args, lineNo)
			if err != nil {
				return err
			}
			if err := net.SetCharge(cur, v); err != nil {
				return fmt.Errorf("persist: line %d: %w", lineNo, err)
			}

		case "TEMPC":
			v, err := parseFloat(args, lineNo)
			if err != nil {
				return err
			}
			if err := net.SetTemp(cur, v); err != nil {
				return fmt.Errorf("persist: line %d: %w", lineNo, err)
			}

		case "CBSET":
			v, err := parseBool(args, lineNo)
			if err != nil {
				return err
			}
			if err := net.SetCB(cur, v); err != nil {
				return fmt.Errorf("persist: line %d: %w", lineNo, err)
			}

		case "TIED":
			c, ok := net.ByName(cur)
			if !ok {
				return fmt.Errorf("persist: line %d: TIED outside a known component", lineNo)
			}
			var names []string
			for i, tok := range args {
				v, err := strconv.ParseBool(tok)
				if err != nil {
					return fmt.Errorf("persist: line %d: TIED flag %d: %w", lineNo, i, err)
				}
				if v {
					names = append(names, c.EndpointName(i))
				}
			}
			if err := net.SetTie(cur, names...); err != nil {
				return fmt.Errorf("persist: line %d: %w", lineNo, err)
			}

		default:
			return fmt.Errorf("persist: line %d: unrecognized key %q", lineNo, kw)
		}
	}

	if cur != "" {
		return fmt.Errorf("persist: BEGIN %s was never closed with END", cur)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return "<missing>"
	}
	return args[0]
}

func parseBool(args []string, lineNo int) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("persist: line %d: expected exactly one bool value", lineNo)
	}
	v, err := strconv.ParseBool(args[0])
	if err != nil {
		return false, fmt.Errorf("persist: line %d: %w", lineNo, err)
	}
	return v, nil
}

func parseFloat(args []string, lineNo int) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("persist: line %d: expected exactly one numeric value", lineNo)
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("persist: line %d: %w", lineNo, err)
	}
	return v, nil
}
