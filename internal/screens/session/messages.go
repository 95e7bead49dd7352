package session

import (
	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
	sess "github.com/abhisek/fequiz/internal/session"
)

// batchLoadedMsg carries the result of fetching the question batch.
type batchLoadedMsg struct {
	Batch []catalog.PublicQuestion
	Err   error
}

// timerTickMsg is sent every second while a countdown runs. Gen is the
// countdown generation the tick was scheduled for.
type timerTickMsg struct {
	Gen uint64
}

// submittedMsg carries the server's verdict for an answer sent by send.
type submittedMsg struct {
	Pending *sess.Pending
	Result  *mastery.Result
	Err     error
}
