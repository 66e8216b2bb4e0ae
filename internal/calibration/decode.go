// Package calibration decodes the liveCalibration event stored under
// CalibrationParams and renders the mounting description shown next to the
// reset button.
package calibration

import (
	"errors"
	"fmt"

	"capnproto.org/go/capnp/v3"
)

// ErrDecode marks a malformed calibration record.
var ErrDecode = errors.New("invalid CalibrationParams")

// Layout of cereal::Event and LiveCalibrationData as written by calibrationd.
// Offsets are data section bytes, pointer slots are indexes.
const (
	eventUnionOffset     capnp.DataOffset = 8
	whichLiveCalibration uint16           = 18
	calStatusOffset      capnp.DataOffset = 0

	eventUnionPtr = 0
	rpyCalibPtr   = 4
)

var (
	eventSize     = capnp.ObjectSize{DataSize: 16, PointerCount: 1}
	liveCalibSize = capnp.ObjectSize{DataSize: 8, PointerCount: 5}
)

// Record is the subset of liveCalibration this service reads. RPY is in radians.
type Record struct {
	CalStatus int32
	RPY       []float32
}

// Decode reads a flat-array capnp message whose root is an Event holding
// liveCalibration.
func Decode(b []byte) (Record, error) {
	msg, err := capnp.Unmarshal(b)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	root, err := msg.Root()
	if err != nil {
		return Record{}, fmt.Errorf("%w: root: %v", ErrDecode, err)
	}
	event := root.Struct()
	if which := event.Uint16(eventUnionOffset); which != whichLiveCalibration {
		return Record{}, fmt.Errorf("%w: event union is %d, not liveCalibration", ErrDecode, which)
	}
	p, err := event.Ptr(eventUnionPtr)
	if err != nil {
		return Record{}, fmt.Errorf("%w: liveCalibration: %v", ErrDecode, err)
	}
	cal := p.Struct()

	rec := Record{CalStatus: int32(int8(cal.Uint8(calStatusOffset)))}
	p, err = cal.Ptr(rpyCalibPtr)
	if err != nil {
		return Record{}, fmt.Errorf("%w: rpyCalib: %v", ErrDecode, err)
	}
	rpy := capnp.Float32List(p.List())
	for i := 0; i < rpy.Len(); i++ {
		rec.RPY = append(rec.RPY, rpy.At(i))
	}

	if rec.CalStatus != 0 && len(rec.RPY) != 3 {
		return Record{}, fmt.Errorf("%w: rpyCalib has %d values, want 3", ErrDecode, len(rec.RPY))
	}
	return rec, nil
}

// Encode builds the Event message Decode reads. Used by tools and tests.
func Encode(rec Record) ([]byte, error) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return nil, err
	}
	event, err := capnp.NewRootStruct(seg, eventSize)
	if err != nil {
		return nil, err
	}
	cal, err := capnp.NewStruct(seg, liveCalibSize)
	if err != nil {
		return nil, err
	}
	cal.SetUint8(calStatusOffset, uint8(int8(rec.CalStatus)))

	rpy, err := capnp.NewFloat32List(seg, int32(len(rec.RPY)))
	if err != nil {
		return nil, err
	}
	for i, v := range rec.RPY {
		rpy.Set(i, v)
	}
	if err := cal.SetPtr(rpyCalibPtr, rpy.ToPtr()); err != nil {
		return nil, err
	}

	event.SetUint16(eventUnionOffset, whichLiveCalibration)
	if err := event.SetPtr(eventUnionPtr, cal.ToPtr()); err != nil {
		return nil, err
	}
	return msg.Marshal()
}
