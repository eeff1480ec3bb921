package audio

const (
	DefaultSampleRate = 48000
	DefaultChannels   = 2
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Channels: DefaultChannels, Format: EncodingLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Channels == 0 || e.Format == ""
}

// BytesPerFrame is the size of one sample for every channel.
func (e EncodingInfo) BytesPerFrame() int {
	return e.Format.ByteSize() * e.Channels
}

type encodingFormat string

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingLinear16 encodingFormat = "linear16"
)
