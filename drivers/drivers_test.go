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

package drivers

import (
	"testing"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/stretchr/testify/assert"
)

func TestDriversRegistered(t *testing.T) {
	names := hachi.Drivers()
	for _, name := range []string{"ebiten", "null", "termloop", "text"} {
		assert.Contains(t, names, name)
	}
}
