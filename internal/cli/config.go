package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	RoomID      string
	PlayerID    string
	SessionFile string
	Output      string
	Verbose     bool
}

// Seat is the room and player remembered from the last join
type Seat struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("XQCTL_SERVER", "http://localhost:8080"),
		RoomID:      os.Getenv("XQCTL_ROOM"),
		PlayerID:    os.Getenv("XQCTL_PLAYER"),
		SessionFile: getEnvOrDefault("XQCTL_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadSeat fills RoomID and PlayerID from the session file when they were
// not given by flag or environment
func (c *Config) LoadSeat() error {
	if c.RoomID != "" && c.PlayerID != "" {
		return nil
	}

	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No session file is fine
		}
		return err
	}

	var seat Seat
	if err := json.Unmarshal(data, &seat); err != nil {
		return err
	}
	if c.RoomID == "" {
		c.RoomID = seat.RoomID
	}
	// a remembered player id only belongs to its own room
	if c.PlayerID == "" && c.RoomID == seat.RoomID {
		c.PlayerID = seat.PlayerID
	}
	return nil
}

// SaveSeat remembers the room and player for later commands
func (c *Config) SaveSeat(seat Seat) error {
	c.RoomID = seat.RoomID
	c.PlayerID = seat.PlayerID

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(seat)
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, data, 0600)
}

// requireRoom returns the room id to act on
func (c *Config) requireRoom() (string, error) {
	if c.RoomID == "" {
		return "", errors.New("no room: pass --room or join a room first")
	}
	return c.RoomID, nil
}

// requireSeat returns the room and player ids to act as
func (c *Config) requireSeat() (string, string, error) {
	room, err := c.requireRoom()
	if err != nil {
		return "", "", err
	}
	if c.PlayerID == "" {
		return "", "", errors.New("no player: pass --player or join the room first")
	}
	return room, c.PlayerID, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xqctl/session.json"
	}
	return filepath.Join(home, ".xqctl", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
