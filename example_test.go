// SPDX-License-Identifier: EPL-2.0

package pcmframe_test

import (
	"fmt"

	"github.com/ik5/pcmframe"
	"github.com/ik5/pcmframe/audio"
	"github.com/ik5/pcmframe/internal/audiotest"
)

func ExampleCollectFrames() {
	// One second of 48 kHz stereo, read the way a 120-step capture callback
	// would deliver it.
	src := audiotest.NewSineSource(48000, 2, 48000, 440)

	frames, err := pcmframe.CollectFrames(src, audio.DefaultConfig(), 120)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%d frames of %d bytes\n", len(frames), len(frames[0].Payload))
	// Output: 33 frames of 960 bytes
}

func ExampleDefaultRegistry() {
	fmt.Println(pcmframe.DefaultRegistry().Formats())
	// Output: [aif aiff flac mp3 ogg wav]
}
