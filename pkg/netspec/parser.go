// Package netspec parses the declarative, line-oriented network format
// (spec §6) into []network.Descriptor, in the style of the teacher's
// pkg/netlist parser: strings.Fields tokenizing, a regexp-based
// value-with-unit-suffix reader, and errors that name the offending line.
package netspec

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/elecsim/pkg/network"
)

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+)(meg|[TGMKkmunp])?$`)

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"M":   1e6,
	"K":   1e3,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
}

// ParseValue reads a bare float or one with an SI magnitude suffix (e.g.
// "28k", "100meg"), mirroring the teacher's netlist value reader.
func ParseValue(tok string) (float64, error) {
	m := valueRe.FindStringSubmatch(strings.TrimSpace(tok))
	if m == nil {
		return 0, fmt.Errorf("invalid value %q", tok)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	if m[2] != "" {
		v *= unitMap[m[2]]
	}
	return v, nil
}

type lineErr struct {
	line int
	err  error
}

func (e *lineErr) Error() string { return fmt.Sprintf("netspec: line %d: %v", e.line, e.err) }
func (e *lineErr) Unwrap() error { return e.err }

// Parse reads a declarative network description and returns the descriptors
// Build consumes. It never resolves names across stanzas; that is
// network.Build's job.
func Parse(r *strings.Reader) ([]network.Descriptor, error) {
	scanner := bufio.NewScanner(r)
	var out []network.Descriptor
	var cur *network.Descriptor
	lineNo := 0

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}

		kw := strings.ToUpper(fields[0])
		if kind, ok := stanzaKinds[kw]; ok {
			flush()
			d, err := newStanza(kind, kw, fields)
			if err != nil {
				return nil, &lineErr{lineNo, err}
			}
			cur = d
			continue
		}

		if cur == nil {
			return nil, &lineErr{lineNo, fmt.Errorf("attribute %q outside any stanza", fields[0])}
		}
		if err := applyAttr(cur, kw, fields[1:]); err != nil {
			return nil, &lineErr{lineNo, err}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netspec: %w", err)
	}
	return out, nil
}

var stanzaKinds = map[string]network.Kind{
	"BATT":  network.KindBattery,
	"GEN":   network.KindGenerator,
	"TRU":   network.KindTRU,
	"INV":   network.KindInverter,
	"LOAD":  network.KindLoad,
	"CB":    network.KindCB,
	"CB3":   network.KindCB,
	"SHUNT": network.KindShunt,
	"TIE":   network.KindTie,
	"DIODE": network.KindDiode,
	"BUS":   network.KindBus,
}

func newStanza(kind network.Kind, kw string, fields []string) (*network.Descriptor, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("%s stanza needs a name", kw)
	}
	d := &network.Descriptor{
		Kind:  kind,
		Name:  fields[1],
		Hints: make(map[string]string),
	}
	switch kw {
	case "CB3":
		d.TriPhase = true
	case "LOAD":
		if len(fields) < 3 {
			return nil, fmt.Errorf("LOAD %s needs AC or DC", d.Name)
		}
		switch strings.ToUpper(fields[2]) {
		case "AC":
			d.AC = true
		case "DC":
			d.AC = false
		default:
			return nil, fmt.Errorf("LOAD %s: expected AC or DC, got %q", d.Name, fields[2])
		}
	case "BUS":
		if len(fields) < 3 {
			return nil, fmt.Errorf("BUS %s needs AC or DC", d.Name)
		}
		switch strings.ToUpper(fields[2]) {
		case "AC":
			d.BusAC = true
		case "DC":
			d.BusAC = false
		default:
			return nil, fmt.Errorf("BUS %s: expected AC or DC, got %q", d.Name, fields[2])
		}
	}
	return d, nil
}

func applyAttr(d *network.Descriptor, kw string, args []string) error {
	one := func() (float64, error) {
		if len(args) < 1 {
			return 0, fmt.Errorf("%s needs a value", kw)
		}
		return ParseValue(args[0])
	}

	switch kw {
	case "VOLTS":
		v, err := one()
		d.Volts = v
		return err
	case "CAPACITY":
		v, err := one()
		d.CapacityJ = v
		return err
	case "MAX_PWR":
		v, err := one()
		d.MaxPwr = v
		return err
	case "CHG_R":
		v, err := one()
		d.ChgR = v
		return err
	case "INT_R":
		v, err := one()
		d.IntR = v
		return err
	case "FREQ":
		v, err := one()
		d.Freq = v
		return err
	case "STAB_RATE":
		v, err := one()
		d.StabRateU, d.StabRateF = v, v
		return err
	case "STAB_RATE_U":
		v, err := one()
		d.StabRateU = v
		return err
	case "STAB_RATE_F":
		v, err := one()
		d.StabRateF = v
		return err
	case "EXC_RPM":
		v, err := one()
		d.ExcRPM = v
		return err
	case "MIN_RPM":
		v, err := one()
		d.MinRPM = v
		return err
	case "MAX_RPM":
		v, err := one()
		d.MaxRPM = v
		return err
	case "IN_VOLTS":
		v, err := one()
		d.InVolts = v
		return err
	case "OUT_VOLTS":
		v, err := one()
		d.OutVolts = v
		return err
	case "OUT_FREQ":
		v, err := one()
		d.OutFreq = v
		return err
	case "CURR_LIM":
		v, err := one()
		d.CurrLim = v
		return err
	case "CHARGER":
		if len(args) < 1 {
			return fmt.Errorf("CHARGER needs a battery name")
		}
		d.IsCharger = true
		d.BattLink = args[0]
		return nil
	case "CURVEPT":
		if len(args) < 3 || strings.ToUpper(args[0]) != "EFF" {
			return fmt.Errorf("CURVEPT expects \"EFF <watts> <eff>\"")
		}
		x, err := ParseValue(args[1])
		if err != nil {
			return fmt.Errorf("curve point watts: %w", err)
		}
		y, err := ParseValue(args[2])
		if err != nil {
			return fmt.Errorf("curve point eff: %w", err)
		}
		d.Curve = append(d.Curve, network.CurvePoint{X: x, Y: y})
		return nil
	case "STAB":
		d.Stabilized = true
		return nil
	case "MIN_VOLTS":
		v, err := one()
		d.MinVolts = v
		return err
	case "STD_LOAD":
		v, err := one()
		d.StdLoad = v
		return err
	case "LEAK":
		v, err := one()
		d.Leak = v
		return err
	case "INCAP":
		if len(args) < 2 {
			return fmt.Errorf("INCAP needs <C> <R>")
		}
		c, err := ParseValue(args[0])
		if err != nil {
			return fmt.Errorf("incap C: %w", err)
		}
		r, err := ParseValue(args[1])
		if err != nil {
			return fmt.Errorf("incap R: %w", err)
		}
		d.IncapC, d.IncapR = c, r
		return nil
	case "LOADCB":
		if len(args) < 1 {
			return fmt.Errorf("LOADCB needs an amps rating")
		}
		amps, err := ParseValue(args[0])
		if err != nil {
			return fmt.Errorf("loadcb amps: %w", err)
		}
		d.HasLoadCB = true
		d.LoadCBAmps = amps
		if len(args) > 1 {
			d.LoadCBLoc = strings.Join(args[1:], " ")
		}
		return nil
	case "MAX_AMPS", "RATING":
		v, err := one()
		d.MaxAmps = v
		return err
	case "HEAT_RATE":
		v, err := one()
		d.HeatRate = v
		return err
	case "FUSE":
		d.IsFuse = true
		return nil
	case "LOCATION":
		d.Location = strings.Join(args, " ")
		return nil
	case "ENDPT":
		if d.Kind != network.KindBus {
			return fmt.Errorf("ENDPT only valid inside a BUS stanza")
		}
		if len(args) < 1 {
			return fmt.Errorf("ENDPT needs a device name")
		}
		ref := network.EndpointRef{Device: args[0]}
		if len(args) > 1 {
			ref.Dir = strings.ToUpper(args[1])
		}
		d.Endpoints = append(d.Endpoints, ref)
		return nil
	default:
		// Unrecognized key: treat as an opaque GUI/diagramming hint (spec
		// §6 "Optional GUI hints (ignored by the solver)").
		d.Hints[kw] = strings.Join(args, " ")
		return nil
	}
}
