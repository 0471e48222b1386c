// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"fmt"
	"time"

	"github.com/ik5/audengine/formats/mp3"
)

func ExampleDecoder_Seek() {
	dec := mp3.New()
	if err := dec.Open("music/intro.mp3"); err != nil {
		fmt.Println("open failed")
		return
	}
	defer dec.Close()

	if dec.Seek(30 * time.Second) {
		chunk := dec.GetData(0, false)
		fmt.Println(chunk.Duration())
	}
}
