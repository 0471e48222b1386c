// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"fmt"

	"github.com/ik5/audengine/formats/vorbis"
)

func ExampleDecoder() {
	dec := vorbis.New()
	if err := dec.Open("music/theme.ogg"); err != nil {
		fmt.Println("open failed")
		return
	}
	defer dec.Close()

	for {
		chunk := dec.GetData(32768, false)
		if chunk.Size == 0 {
			break
		}
		fmt.Println(chunk.Format, chunk.Duration())
	}
}
