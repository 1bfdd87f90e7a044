package popstage

import "time"

const (
	// MinChannel and MaxChannel bound the selectable channels.
	MinChannel = 0
	MaxChannel = 5

	glitchDuration = 200 * time.Millisecond
)

// ChannelSelector routes digit keys to the screen under the pointer. It
// keeps only render-local state (hover and glitch timing); the selected
// channels live in the store.
type ChannelSelector struct {
	store   *Store
	hovered ScreenID
	hover   bool
	glitch  map[ScreenID]time.Duration
}

// NewChannelSelector creates a selector writing to store.
func NewChannelSelector(store *Store) *ChannelSelector {
	return &ChannelSelector{store: store, glitch: make(map[ScreenID]time.Duration)}
}

// Hover records that the pointer entered (on=true) or left screen.
// Leaving a screen other than the hovered one is ignored.
func (c *ChannelSelector) Hover(screen ScreenID, on bool) {
	switch {
	case on:
		c.hovered, c.hover = screen, true
	case c.hover && c.hovered == screen:
		c.hover = false
	}
}

// Hovered returns the hovered screen and whether there is one.
func (c *ChannelSelector) Hovered() (ScreenID, bool) {
	return c.hovered, c.hover
}

// Key handles a digit key press at now. The digit selects a channel on the
// hovered screen; with no screen hovered, outside MinChannel..MaxChannel,
// or equal to the screen's current channel, it is ignored. It reports
// whether the channel changed.
func (c *ChannelSelector) Key(digit int, now time.Duration) bool {
	if !c.hover || digit < MinChannel || digit > MaxChannel {
		return false
	}
	if c.store.Current().Channel(c.hovered) == digit {
		return false
	}
	c.store.SelectChannel(c.hovered, digit)
	c.glitch[c.hovered] = now + glitchDuration
	return true
}

// Glitching reports whether screen is inside its post-switch glitch window.
func (c *ChannelSelector) Glitching(screen ScreenID, now time.Duration) bool {
	until, ok := c.glitch[screen]
	return ok && now < until
}
