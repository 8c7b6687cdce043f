package chat

import "go-safeher/types"

// History is an append-only transcript. Append never modifies the receiver's
// backing array, so values handed out earlier stay valid.
type History []types.Message

func (h History) Append(msgs ...types.Message) History {
	out := make(History, len(h), len(h)+len(msgs))
	copy(out, h)
	return append(out, msgs...)
}

// Messages returns a copy safe for callers to keep.
func (h History) Messages() []types.Message {
	return append([]types.Message(nil), h...)
}
