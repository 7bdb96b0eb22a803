package network

// BusPayload marks a bus's AC/DC typing. Buses are idealized: zero
// impedance, no stateful quantities of their own (spec §1, §3).
type BusPayload struct {
	AC bool
}

// ShuntPayload marks an idealized zero-drop two-terminal jumper (spec §3).
type ShuntPayload struct{}

// DiodePayload records a diode's forward sense: Endpoints[0] is always the
// anode/input side, Endpoints[1] the cathode/output side (spec §3, §4.5:
// "only from input side to output side; reverse entry terminates").
type DiodePayload struct{}
