/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

// Package host holds the pieces shared by the graphical and text drivers:
// the keyboard layout and the pixel conversion of the framebuffer.
package host

import "github.com/Francesco149/go-hachi/v2/hachi"

// Keys lists, for every CHIP-8 key 0x0-0xF in order, the keyboard character
// it is bound to. The 4x4 block on the left of a qwerty keyboard:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
const Keys = "x123qweasdzc4rfv"

// KeyFor returns the CHIP-8 key bound to the character r.
func KeyFor(r rune) (int, bool) {
	for k, c := range Keys {
		if c == r {
			return k, true
		}
	}
	return 0, false
}

// Pixel colors of the ARGB conversion.
const (
	// Off is the color of clear pixels.
	Off uint32 = 0xFF000000
	// Base is the color of the first set pixel, each following pixel is
	// GradientStep darker.
	Base         uint32 = 0xFFFFFFFF
	GradientStep uint32 = 8191
)

// ARGB converts the framebuffer into 0xAARRGGBB pixels, row by row. Set
// pixels are tinted with a gradient that descends by GradientStep on every
// pixel index, set or not.
func ARGB(screen *[hachi.ScreenSize]bool, dst []uint32) {
	color := Base
	for i, on := range screen {
		if i >= len(dst) {
			return
		}
		if on {
			dst[i] = color
		} else {
			dst[i] = Off
		}
		color -= GradientStep
	}
}

// RGBA converts the framebuffer into 4 bytes per pixel in R, G, B, A order,
// with the same colors as ARGB. dst must hold 4*ScreenSize bytes.
func RGBA(screen *[hachi.ScreenSize]bool, dst []byte) {
	color := Base
	for i, on := range screen {
		if 4*i+3 >= len(dst) {
			return
		}
		c := Off
		if on {
			c = color
		}
		dst[4*i] = byte(c >> 16)
		dst[4*i+1] = byte(c >> 8)
		dst[4*i+2] = byte(c)
		dst[4*i+3] = byte(c >> 24)
		color -= GradientStep
	}
}
