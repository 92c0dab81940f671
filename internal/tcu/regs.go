package tcu

import "github.com/jzsoc/tcu/internal/regmap"

// Register map of the timer/counter unit. Offsets are relative to the
// block's register window. The enable, stop, flag and mask groups each come
// as a status register plus write-1-to-set and write-1-to-clear companions,
// with one bit per channel.
const (
	RegTER  = 0x10 // enable status
	RegTESR = 0x14 // enable set
	RegTECR = 0x18 // enable clear
	RegTSR  = 0x1c // stop status
	RegTFR  = 0x20 // match flags (bit c = full match, bit c+16 = half match)
	RegTFSR = 0x24 // flag set
	RegTFCR = 0x28 // flag clear
	RegTSSR = 0x2c // stop set
	RegTMR  = 0x30 // interrupt mask status
	RegTMSR = 0x34 // mask set
	RegTMCR = 0x38 // mask clear
	RegTSCR = 0x3c // stop clear

	// Per-channel block, stride 0x10 from channel 0.
	RegTDFR0 = 0x40 // countdown full-match value
	RegTDHR0 = 0x44 // countdown half-match value
	RegTCNT0 = 0x48 // live count
	RegTCSR0 = 0x4c // control/status

	RegTSTR  = 0xf0 // soft-reset status
	RegTSTSR = 0xf4 // soft-reset set
	RegTSTCR = 0xf8 // soft-reset clear

	ChannelStride = 0x10
)

// TCSRReservedBits are hardware-reserved control bits that software must
// never set. Reset clears everything above them (0xffc0) and leaves them
// alone.
const TCSRReservedBits = 0x3f

// CountdownMax is the largest value the 16-bit countdown field can hold.
const CountdownMax = 0xffff

func RegTDFR(c int) uint32 { return RegTDFR0 + uint32(c)*ChannelStride }
func RegTDHR(c int) uint32 { return RegTDHR0 + uint32(c)*ChannelStride }
func RegTCNT(c int) uint32 { return RegTCNT0 + uint32(c)*ChannelStride }
func RegTCSR(c int) uint32 { return RegTCSR0 + uint32(c)*ChannelStride }

// enableChannel starts channel idx counting via the shared enable group.
// Any client may start or stop a channel it owns through this group, which
// is why it is a capability separate from the per-channel registers.
func enableChannel(ter regmap.Interface, idx int) error {
	return ter.Write32(RegTESR, 1<<uint(idx))
}

// disableChannel stops channel idx via the shared enable group.
func disableChannel(ter regmap.Interface, idx int) error {
	return ter.Write32(RegTECR, 1<<uint(idx))
}
