package bearer

// ATT MTU bounds for the mesh GATT bearer.
const (
	// MinMTU is the ATT default MTU every link starts with.
	MinMTU = 23

	// DefaultMTU is the MTU assumed before negotiation.
	DefaultMTU = MinMTU

	// MaxMTU is the largest MTU the bearer requests.
	MaxMTU = 517

	// WriteOverhead is the ATT write header (opcode + attribute handle).
	WriteOverhead = 3
)

// ClampMTU limits mtu to [MinMTU, MaxMTU].
func ClampMTU(mtu int) int {
	if mtu < MinMTU {
		return MinMTU
	}
	if mtu > MaxMTU {
		return MaxMTU
	}
	return mtu
}

// PacketSize returns the usable payload per write for the given MTU.
// The result is never less than 1.
func PacketSize(mtu int) int {
	size := mtu - WriteOverhead
	if size < 1 {
		return 1
	}
	return size
}
