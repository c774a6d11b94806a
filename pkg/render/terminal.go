package render

import (
	"fmt"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Sink presents finished frames.
type Sink interface {
	Present(fb *Framebuffer) error
}

// Display is a screen that can flush its cells to the output. *uv.Terminal
// satisfies it.
type Display interface {
	uv.Screen
	Display() error
}

// TerminalSink shows frames as half-block cells: each cell covers two
// framebuffer rows, the upper one as foreground and the lower one as
// background.
type TerminalSink struct {
	scr Display
}

// NewTerminalSink creates a sink drawing to scr.
func NewTerminalSink(scr Display) *TerminalSink {
	return &TerminalSink{scr: scr}
}

// FramebufferSize returns the full-resolution framebuffer size for the
// current screen bounds.
func (s *TerminalSink) FramebufferSize() (width, height int) {
	b := s.scr.Bounds()
	return b.Dx(), b.Dy() * 2
}

// Present draws fb over the whole screen and displays it.
func (s *TerminalSink) Present(fb *Framebuffer) error {
	fb.Draw(s.scr, s.scr.Bounds())
	if err := s.scr.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// Draw converts the framebuffer to terminal cells inside area. A framebuffer
// smaller than the area (a low-resolution frame) is upscaled with nearest
// neighbour sampling.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cols, rows := area.Dx(), area.Dy()
	if cols <= 0 || rows <= 0 || fb.Width == 0 || fb.Height == 0 {
		return
	}
	pixRows := rows * 2

	for row := range rows {
		topY := (row * 2) * fb.Height / pixRows
		botY := (row*2 + 1) * fb.Height / pixRows

		for col := range cols {
			x := col * fb.Width / cols

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: toColor(fb.At(x, topY)),
					Bg: toColor(fb.At(x, botY)),
				},
			}
			scr.SetCell(area.Min.X+col, area.Min.Y+row, cell)
		}
	}
}

func toColor(c Color) color.Color {
	return c.RGBA()
}

// PNGSink writes every presented frame to the same PNG file.
type PNGSink struct {
	Path string
}

// Present implements Sink.
func (s PNGSink) Present(fb *Framebuffer) error {
	if err := fb.SavePNG(s.Path); err != nil {
		return fmt.Errorf("save %s: %w", s.Path, err)
	}
	return nil
}
