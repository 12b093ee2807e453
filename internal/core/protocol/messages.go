// Package protocol defines the named messages exchanged between the
// simulation core and the server, and the envelope codec that frames them.
package protocol

import (
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/snapshot"
)

// MessageType names a message on the wire.
type MessageType string

const (
	// Client to server.

	TypeClientReady MessageType = "client.ready"
	TypePing        MessageType = "ping"

	// Server to client.

	TypePlayerCreate MessageType = "player.create"
	TypePlayerLeave  MessageType = "player.leave"
	TypeClientSync   MessageType = "client.sync"
	TypePong         MessageType = "pong"
	TypeGameEnd      MessageType = "game.end"
)

// ClientReady is sent once after the local entity has been constructed.
type ClientReady struct{}

// PlayerCreate instructs the client to construct an entity, usually the
// locally-controlled player.
type PlayerCreate struct {
	ID    string            `json:"id"`
	Kind  string            `json:"kind"`
	Attrs entity.Attributes `json:"attrs"`
}

// PlayerLeave retires an entity by id. Idempotent on the receiving side.
type PlayerLeave struct {
	ID string `json:"id"`
}

// ClientSync carries one world snapshot. The receiver stamps arrival time.
type ClientSync = snapshot.WorldState

// Ping carries the sender's timestamp in unix milliseconds; Pong echoes it
// back untouched.
type Ping struct {
	SentAt int64 `json:"sentAt"`
}

type Pong struct {
	SentAt int64 `json:"sentAt"`
}

// GameEnd signals the end of the session.
type GameEnd struct {
	Winner string `json:"winner"`
}
