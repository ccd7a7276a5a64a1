// Package model holds the plain data types shared across the beam planner.
package model

// UserID identifies a ground user. Opaque and unique within a scenario.
type UserID string

// SatelliteID identifies an orbital relay node.
type SatelliteID string

// Channel is one of the four beam channels a satellite can serve a user on.
type Channel string

const (
	ChannelA Channel = "A"
	ChannelB Channel = "B"
	ChannelC Channel = "C"
	ChannelD Channel = "D"
)

// Channels is the fixed trial order for channel selection. Both assignment
// passes walk channels in this order, which keeps solutions deterministic.
var Channels = [4]Channel{ChannelA, ChannelB, ChannelC, ChannelD}

// Assignment records which satellite and channel serve a user.
type Assignment struct {
	Satellite SatelliteID `json:"satellite"`
	Channel   Channel     `json:"channel"`
}

// Solution maps each served user to its assignment. A user absent from the
// map could not be placed.
type Solution map[UserID]Assignment
