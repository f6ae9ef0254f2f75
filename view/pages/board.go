// Package pages renders the server side HTML views.
package pages

import "github.com/mmuslimabdulj/goat-board/internal/domain"

// BoardData is everything the board page shows
type BoardData struct {
	Messages     []domain.Message
	MaxRecordLen int
	Error        string
}
