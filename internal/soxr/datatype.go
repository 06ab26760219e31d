package soxr

import "fmt"

// Datatype identifies a sample encoding and buffer layout. The values follow
// libsoxr: the low two bits select the encoding, and split (planar) types
// start at 4.
type Datatype int

const (
	Float32I Datatype = iota
	Float64I
	Int32I
	Int16I
	Float32S
	Float64S
	Int32S
	Int16S
)

const splitBase = Float32S

var datatypeNames = [...]string{
	Float32I: "float32-i",
	Float64I: "float64-i",
	Int32I:   "int32-i",
	Int16I:   "int16-i",
	Float32S: "float32-s",
	Float64S: "float64-s",
	Int32S:   "int32-s",
	Int16S:   "int16-s",
}

// Valid reports whether d is a known datatype.
func (d Datatype) Valid() bool {
	return d >= Float32I && d <= Int16S
}

// IsPlanar reports whether d uses one buffer per channel.
func (d Datatype) IsPlanar() bool {
	return d >= splitBase
}

// BytesPerSample returns the size of one sample of d.
func (d Datatype) BytesPerSample() int {
	switch d.encoding() {
	case Float32I, Int32I:
		return 4
	case Float64I:
		return 8
	case Int16I:
		return 2
	default:
		return 0
	}
}

func (d Datatype) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Datatype(%d)", int(d))
	}
	return datatypeNames[d]
}

// encoding strips the layout bit.
func (d Datatype) encoding() Datatype {
	return d &^ splitBase
}

func (d Datatype) isInt() bool {
	e := d.encoding()
	return e == Int32I || e == Int16I
}
