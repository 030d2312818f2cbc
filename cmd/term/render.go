package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"coldiron/server/models"
)

const messageLines = 5

// canvas is the part of tcell.Screen the renderer draws on
type canvas interface {
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
}

func styleOf(fg, bg string) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.GetColor(fg)).Background(tcell.GetColor(bg))
}

func drawText(c canvas, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		c.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawFrame lays out the title on the first row, the map below it, the status
// panel to its right and the newest messages underneath
func drawFrame(c canvas, frame models.Frame, notice string) {
	plain := tcell.StyleDefault
	drawText(c, 1, 0, frame.Title, plain.Bold(true))

	for y, row := range frame.Cells {
		for x, cell := range row {
			ch, _ := utf8.DecodeRuneInString(cell.Char)
			if ch == utf8.RuneError {
				ch = ' '
			}
			c.SetContent(x+1, y+1, ch, nil, styleOf(cell.Fg, cell.Bg))
		}
	}

	panelX := frame.Width + 3
	line := 1
	for _, p := range frame.Status.Portrait {
		drawText(c, panelX, line, p, plain)
		line++
	}
	line++
	drawText(c, panelX, line, fmt.Sprintf("HP %d/%d", frame.Status.HP, frame.Status.MaxHP), plain)
	drawText(c, panelX, line+1, fmt.Sprintf("Kills %d", frame.Status.Kills), plain)
	drawText(c, panelX, line+2, fmt.Sprintf("Turn %d", frame.Status.Turns), plain)

	msgY := frame.Height + 2
	messages := frame.Messages
	if len(messages) > messageLines {
		messages = messages[len(messages)-messageLines:]
	}
	for i, m := range messages {
		drawText(c, 1, msgY+i, m, plain)
	}

	if notice != "" {
		drawText(c, 1, msgY+messageLines, notice, plain.Foreground(tcell.ColorRed))
	}
	if frame.GameOver {
		drawText(c, 1, msgY+messageLines+1, "You have died. Enter starts a new game, escape quits.", plain.Bold(true))
	}
}
