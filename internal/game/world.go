// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/cminter/TADA/internal/proto"
)

// StartingGold is the purse handed to a player on their first login.
const StartingGold = 1000

// startRoom is where new players appear.
const startRoom = "ul"

// Room is one location on the compass grid.
type Room struct {
	ID          string
	Name        string
	Description string

	// Exits maps a compass direction (n, e, s, w) to a room ID.
	Exits map[string]string
}

// player is per-user game state. It lives for the lifetime of the world, not
// the connection, so a player who reconnects is where they left off.
type player struct {
	RoomID string
	Gold   int
}

// directions maps every accepted movement word to its canonical direction.
var directions = map[string]string{
	"n": "n", "north": "n",
	"e": "e", "east": "e",
	"s": "s", "south": "s",
	"w": "w", "west": "w",
}

// World is a four-room demonstration world implementing Handler.
type World struct {
	rooms  map[string]*Room
	logger *slog.Logger

	mu      sync.Mutex
	players map[string]*player
}

// NewWorld creates the world with its built-in room grid and a no-op logger.
func NewWorld() *World {
	return &World{
		rooms:   buildRooms(),
		logger:  slog.New(slog.DiscardHandler),
		players: make(map[string]*player),
	}
}

// NewWorldWithLogger creates the world with the provided logger.
func NewWorldWithLogger(logger *slog.Logger) (*World, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	w := NewWorld()
	w.logger = logger
	return w, nil
}

// buildRooms lays out a 2x2 compass grid.
func buildRooms() map[string]*Room {
	rooms := map[string]*Room{
		"ul": {
			ID:          "ul",
			Name:        "Northwest Corner",
			Description: "A windswept corner of the courtyard. Paths lead east and south.",
			Exits:       map[string]string{"e": "ur", "s": "ll"},
		},
		"ur": {
			ID:          "ur",
			Name:        "Northeast Corner",
			Description: "A mossy corner under an old oak. Paths lead west and south.",
			Exits:       map[string]string{"w": "ul", "s": "lr"},
		},
		"ll": {
			ID:          "ll",
			Name:        "Southwest Corner",
			Description: "A sunlit corner by a dry fountain. Paths lead north and east.",
			Exits:       map[string]string{"n": "ul", "e": "lr"},
		},
		"lr": {
			ID:          "lr",
			Name:        "Southeast Corner",
			Description: "A shaded corner with a crumbling bench. Paths lead north and west.",
			Exits:       map[string]string{"n": "ll", "w": "ur"},
		},
	}
	return rooms
}

// InitGreeting returns the pre-login banner.
func (w *World) InitGreeting() []string {
	return []string{
		"Welcome to TADA.",
		"Please log in.",
	}
}

// LoginFailureLines returns the lines shown with a generic login failure.
func (w *World) LoginFailureLines() []string {
	return []string{"Login failed."}
}

// OnLoginSuccess places the player in the world, creating their state on
// first login, and returns the welcome message.
func (w *World) OnLoginSuccess(_ context.Context, userID string) (*proto.Message, error) {
	w.mu.Lock()
	p, ok := w.players[userID]
	if !ok {
		p = &player{RoomID: startRoom, Gold: StartingGold}
		w.players[userID] = p
	}
	room, err := w.roomOf(p)
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}

	w.logger.Info("player entered the world", "user_id", userID, "room", room.ID)

	lines := append([]string{fmt.Sprintf("Welcome, %s!", userID)}, describeRoom(room)...)
	return &proto.Message{
		Lines:   lines,
		Mode:    proto.ModeApp,
		Changes: map[string]any{"gold": p.Gold},
		Prompt:  "> ",
	}, nil
}

// OnCommand dispatches one in-game command. A bye message ends the session.
func (w *World) OnCommand(_ context.Context, userID string, req *proto.Request) (*proto.Message, error) {
	fields := strings.Fields(strings.ToLower(req.Cmd))
	if len(fields) == 0 {
		return w.huh(userID, req.Cmd), nil
	}
	verb, args := fields[0], fields[1:]

	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[userID]
	if !ok {
		return nil, oops.Code("GAME_NO_PLAYER").
			With("user_id", userID).
			Errorf("no player state for %q", userID)
	}

	switch {
	case verb == "look":
		msg, err := w.look(p)
		recordCommand("look", statusOf(err))
		return msg, err
	case verb == "go" || verb == "g":
		if len(args) == 0 {
			recordCommand("go", StatusSuccess)
			return &proto.Message{Lines: []string{"Go where?"}, Prompt: "> "}, nil
		}
		msg, err := w.move(userID, p, args[0])
		recordCommand("go", statusOf(err))
		return msg, err
	case directions[verb] != "":
		msg, err := w.move(userID, p, verb)
		recordCommand("go", statusOf(err))
		return msg, err
	case verb == "help":
		recordCommand("help", StatusSuccess)
		return w.help(), nil
	case verb == "bye" || verb == "logout":
		recordCommand("bye", StatusSuccess)
		return &proto.Message{Lines: []string{"Goodbye."}, Mode: proto.ModeBye}, nil
	default:
		// Fixed label; the raw verb is unbounded user input.
		recordCommand("unknown", StatusUnknown)
		return w.huh(userID, req.Cmd), nil
	}
}

// statusOf maps a dispatch result to a metric status label.
func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// look describes the player's current room.
func (w *World) look(p *player) (*proto.Message, error) {
	room, err := w.roomOf(p)
	if err != nil {
		return nil, err
	}
	return &proto.Message{Lines: describeRoom(room), Prompt: "> "}, nil
}

// move walks the player through an exit if one exists in that direction.
func (w *World) move(userID string, p *player, word string) (*proto.Message, error) {
	dir := directions[word]
	if dir == "" {
		return &proto.Message{Lines: []string{fmt.Sprintf("%q is not a direction.", word)}, Prompt: "> "}, nil
	}

	room, err := w.roomOf(p)
	if err != nil {
		return nil, err
	}
	destID, ok := room.Exits[dir]
	if !ok {
		return &proto.Message{Lines: []string{"You can't go that way."}, Prompt: "> "}, nil
	}

	dest, ok := w.rooms[destID]
	if !ok {
		return nil, oops.Code("GAME_BAD_EXIT").
			With("room", room.ID).
			With("direction", dir).
			Errorf("exit %s of room %s points to unknown room %q", dir, room.ID, destID)
	}

	p.RoomID = dest.ID
	w.logger.Debug("player moved", "user_id", userID, "from", room.ID, "to", dest.ID)
	return &proto.Message{
		Lines:   describeRoom(dest),
		Changes: map[string]any{"room": dest.ID},
		Prompt:  "> ",
	}, nil
}

func (w *World) help() *proto.Message {
	return &proto.Message{
		Lines: []string{
			"Commands:",
			"  look            describe your surroundings",
			"  go <direction>  walk north, east, south, or west",
			"  help            show this text",
			"  bye             leave the game",
		},
		Prompt: "> ",
	}
}

func (w *World) huh(userID, cmd string) *proto.Message {
	w.logger.Debug("unknown command", "user_id", userID, "cmd", cmd)
	return &proto.Message{Lines: []string{"Huh?"}, Prompt: "> "}
}

// roomOf resolves a player's room. Callers must hold w.mu.
func (w *World) roomOf(p *player) (*Room, error) {
	room, ok := w.rooms[p.RoomID]
	if !ok {
		return nil, oops.Code("GAME_BAD_ROOM").
			With("room", p.RoomID).
			Errorf("player is in unknown room %q", p.RoomID)
	}
	return room, nil
}

// describeRoom renders a room as display lines.
func describeRoom(room *Room) []string {
	lines := []string{room.Name, room.Description}
	if len(room.Exits) > 0 {
		dirs := make([]string, 0, len(room.Exits))
		for d := range room.Exits {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		lines = append(lines, "Exits: "+strings.Join(dirs, ", "))
	}
	return lines
}

// Compile-time interface check.
var _ Handler = (*World)(nil)
