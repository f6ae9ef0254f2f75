package domain

import "strings"

// FieldSeparator splits a stored record into timestamp, sender and body.
const FieldSeparator = "\t"

// Message is one entry on the board
type Message struct {
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	Body      string `json:"body"`
}

// Record encodes the message as a single history record
func (m Message) Record() string {
	return m.Timestamp + FieldSeparator + m.From + FieldSeparator + m.Body
}

// ParseRecord decodes a history record. Records written by older
// deployments may carry fewer fields: a single field is the body, two
// fields are sender and body.
func ParseRecord(record string) Message {
	fields := strings.SplitN(record, FieldSeparator, 3)
	switch len(fields) {
	case 1:
		return Message{Body: fields[0]}
	case 2:
		return Message{From: fields[0], Body: fields[1]}
	default:
		return Message{Timestamp: fields[0], From: fields[1], Body: fields[2]}
	}
}
