package client

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// World units per terminal cell. Cells are about twice as tall as wide.
const (
	unitsPerCol = 5
	unitsPerRow = 10
)

var (
	styleOwn    = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleOther  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCoin   = tcell.StyleDefault.Foreground(tcell.ColorGold)
	styleHUD    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// project maps a world position to a screen cell with cam at the centre.
// World y grows upwards, screen rows grow downwards.
func project(pos, cam mgl32.Vec2, width, height int) (col, row int, ok bool) {
	dx := (pos[0] - cam[0]) / unitsPerCol
	dy := (pos[1] - cam[1]) / unitsPerRow
	col = width/2 + round(dx)
	row = height/2 - round(dy)
	ok = col >= 0 && col < width && row >= 0 && row < height
	return col, row, ok
}

func round(f float32) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// draw renders the session onto screen. The HUD occupies the top rows.
func draw(screen tcell.Screen, s *Session) {
	screen.Clear()
	width, height := screen.Size()

	own, spawned := s.Predicted()
	cam := own.Vec2()

	for _, c := range s.Coins() {
		if col, row, ok := project(mgl32.Vec2{c.X, c.Y}, cam, width, height); ok {
			screen.SetContent(col, row, 'o', nil, styleCoin)
		}
	}
	for _, p := range s.Players() {
		if p.ID == uint64(s.ID) {
			continue
		}
		if col, row, ok := project(mgl32.Vec2{p.X, p.Y}, cam, width, height); ok {
			screen.SetContent(col, row, '@', nil, styleOther)
		}
	}
	if spawned {
		col, row, _ := project(cam, cam, width, height)
		screen.SetContent(col, row, '@', nil, styleOwn)
	}

	header := fmt.Sprintf("Client %d", s.ID)
	if !spawned {
		header += " (despawned, space to spawn)"
	}
	drawText(screen, 0, 0, header, styleHUD)
	for i, line := range s.ScoreLines() {
		drawText(screen, width-len(line)-1, i, line, styleHUD)
	}
	drawText(screen, 0, height-1, "wasd/arrows move  space spawn  backspace delete  q quit", styleBorder)

	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	if x < 0 {
		x = 0
	}
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
