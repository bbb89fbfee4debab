package models

import "fmt"

// MountPosition is a wheel slot on the tractor or trailer, or a spare slot.
type MountPosition string

const (
	PositionFrontLeft  MountPosition = "front_left"
	PositionFrontRight MountPosition = "front_right"

	PositionDrive1LeftOuter  MountPosition = "drive1_left_outer"
	PositionDrive1LeftInner  MountPosition = "drive1_left_inner"
	PositionDrive1RightOuter MountPosition = "drive1_right_outer"
	PositionDrive1RightInner MountPosition = "drive1_right_inner"

	PositionDrive2LeftOuter  MountPosition = "drive2_left_outer"
	PositionDrive2LeftInner  MountPosition = "drive2_left_inner"
	PositionDrive2RightOuter MountPosition = "drive2_right_outer"
	PositionDrive2RightInner MountPosition = "drive2_right_inner"

	PositionTrailer1LeftOuter  MountPosition = "trailer1_left_outer"
	PositionTrailer1LeftInner  MountPosition = "trailer1_left_inner"
	PositionTrailer1RightOuter MountPosition = "trailer1_right_outer"
	PositionTrailer1RightInner MountPosition = "trailer1_right_inner"

	PositionTrailer2LeftOuter  MountPosition = "trailer2_left_outer"
	PositionTrailer2LeftInner  MountPosition = "trailer2_left_inner"
	PositionTrailer2RightOuter MountPosition = "trailer2_right_outer"
	PositionTrailer2RightInner MountPosition = "trailer2_right_inner"

	PositionTrailer3LeftOuter  MountPosition = "trailer3_left_outer"
	PositionTrailer3LeftInner  MountPosition = "trailer3_left_inner"
	PositionTrailer3RightOuter MountPosition = "trailer3_right_outer"
	PositionTrailer3RightInner MountPosition = "trailer3_right_inner"

	PositionSpare1 MountPosition = "spare_1"
	PositionSpare2 MountPosition = "spare_2"
)

// PositionGroup is a block of the vehicle layout.
type PositionGroup string

const (
	GroupTractor PositionGroup = "tractor"
	GroupTrailer PositionGroup = "trailer"
	GroupSpare   PositionGroup = "spare"
)

type positionInfo struct {
	label string
	group PositionGroup
	spare bool
}

var positionTable = map[MountPosition]positionInfo{
	PositionFrontLeft:  {"Front left", GroupTractor, false},
	PositionFrontRight: {"Front right", GroupTractor, false},

	PositionDrive1LeftOuter:  {"Drive axle left outer", GroupTractor, false},
	PositionDrive1LeftInner:  {"Drive axle left inner", GroupTractor, false},
	PositionDrive1RightOuter: {"Drive axle right outer", GroupTractor, false},
	PositionDrive1RightInner: {"Drive axle right inner", GroupTractor, false},

	PositionDrive2LeftOuter:  {"Tag axle left outer", GroupTractor, false},
	PositionDrive2LeftInner:  {"Tag axle left inner", GroupTractor, false},
	PositionDrive2RightOuter: {"Tag axle right outer", GroupTractor, false},
	PositionDrive2RightInner: {"Tag axle right inner", GroupTractor, false},

	PositionTrailer1LeftOuter:  {"Trailer axle 1 left outer", GroupTrailer, false},
	PositionTrailer1LeftInner:  {"Trailer axle 1 left inner", GroupTrailer, false},
	PositionTrailer1RightOuter: {"Trailer axle 1 right outer", GroupTrailer, false},
	PositionTrailer1RightInner: {"Trailer axle 1 right inner", GroupTrailer, false},

	PositionTrailer2LeftOuter:  {"Trailer axle 2 left outer", GroupTrailer, false},
	PositionTrailer2LeftInner:  {"Trailer axle 2 left inner", GroupTrailer, false},
	PositionTrailer2RightOuter: {"Trailer axle 2 right outer", GroupTrailer, false},
	PositionTrailer2RightInner: {"Trailer axle 2 right inner", GroupTrailer, false},

	PositionTrailer3LeftOuter:  {"Trailer axle 3 left outer", GroupTrailer, false},
	PositionTrailer3LeftInner:  {"Trailer axle 3 left inner", GroupTrailer, false},
	PositionTrailer3RightOuter: {"Trailer axle 3 right outer", GroupTrailer, false},
	PositionTrailer3RightInner: {"Trailer axle 3 right inner", GroupTrailer, false},

	PositionSpare1: {"Spare 1", GroupSpare, true},
	PositionSpare2: {"Spare 2", GroupSpare, true},
}

// AllPositions lists every slot in layout order.
var AllPositions = []MountPosition{
	PositionFrontLeft, PositionFrontRight,
	PositionDrive1LeftOuter, PositionDrive1LeftInner, PositionDrive1RightOuter, PositionDrive1RightInner,
	PositionDrive2LeftOuter, PositionDrive2LeftInner, PositionDrive2RightOuter, PositionDrive2RightInner,
	PositionTrailer1LeftOuter, PositionTrailer1LeftInner, PositionTrailer1RightOuter, PositionTrailer1RightInner,
	PositionTrailer2LeftOuter, PositionTrailer2LeftInner, PositionTrailer2RightOuter, PositionTrailer2RightInner,
	PositionTrailer3LeftOuter, PositionTrailer3LeftInner, PositionTrailer3RightOuter, PositionTrailer3RightInner,
	PositionSpare1, PositionSpare2,
}

// IsValid reports whether p is a known slot.
func (p MountPosition) IsValid() bool {
	_, ok := positionTable[p]
	return ok
}

// IsSpare reports whether p is a storage slot. Tires kept there accrue no mileage.
func (p MountPosition) IsSpare() bool {
	return positionTable[p].spare
}

// Label returns a human readable name for the slot.
func (p MountPosition) Label() string {
	if info, ok := positionTable[p]; ok {
		return info.label
	}
	return string(p)
}

// Group returns the layout block the slot belongs to.
func (p MountPosition) Group() PositionGroup {
	return positionTable[p].group
}

// ParsePosition converts raw input into a MountPosition.
func ParsePosition(s string) (MountPosition, error) {
	p := MountPosition(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown mount position %q", s)
	}
	return p, nil
}
