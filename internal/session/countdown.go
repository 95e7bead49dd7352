package session

// countdown is the per-question timer. Each arm bumps gen; ticks carrying an
// older generation are stale and ignored, which cancels a countdown the
// moment the session leaves the question it was armed for.
type countdown struct {
	seconds   int
	remaining int
	armed     bool
	gen       uint64
}

func (c *countdown) arm() {
	c.gen++
	c.remaining = c.seconds
	c.armed = c.seconds > 0
}

func (c *countdown) disarm() {
	if c.armed {
		c.gen++
	}
	c.armed = false
}

// tick consumes one second of a live countdown and reports whether it just
// expired. Stale or disarmed ticks do nothing.
func (c *countdown) tick(gen uint64) (expired bool) {
	if !c.armed || gen != c.gen {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.disarm()
	return true
}

// resume re-arms a disarmed countdown with the seconds it had left, under a
// new generation.
func (c *countdown) resume() {
	if c.armed || c.seconds == 0 || c.remaining <= 0 {
		return
	}
	c.gen++
	c.armed = true
}
