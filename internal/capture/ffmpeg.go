package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Default raw capture size requested from a v4l2 device.
const (
	DefaultRawWidth  = 640
	DefaultRawHeight = 480
)

// FFmpegConfig selects what ffmpeg reads from.
type FFmpegConfig struct {
	// Input is a video file or device path. Empty means /dev/video<index>.
	Input string

	// Format is the ffmpeg input format. Defaults to "v4l2" for device
	// indexes and to auto-detection for files.
	Format string

	// Width and Height are the raw size ffmpeg scales its output to. Zero
	// probes the input (files) or uses 640x480 (devices).
	Width  int
	Height int

	// FrameRate limits the output rate; zero keeps the input rate.
	FrameRate int
}

// ffmpegProbe only cares about video stream dimensions.
type ffmpegProbe struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// probeSize reads the first video stream's dimensions with ffprobe.
func probeSize(input string) (int, int, error) {
	out, err := ffmpeg.Probe(input)
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe error: %w", err)
	}

	var probe ffmpegProbe
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, 0, fmt.Errorf("json unmarshal error: %w", err)
	}
	for _, s := range probe.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			return s.Width, s.Height, nil
		}
	}
	return 0, 0, fmt.Errorf("no video stream found in %s", input)
}

// ffmpegDevice reads rgb24 rawvideo frames from an ffmpeg child process.
type ffmpegDevice struct {
	width  int
	height int
	pipe   *io.PipeReader
	cancel context.CancelFunc
	done   chan error
	buf    []byte
}

// FFmpegOpener returns an Opener backed by an ffmpeg process piping raw
// frames. It needs the ffmpeg binary on PATH but no cgo.
func FFmpegOpener(cfg FFmpegConfig) Opener {
	return func(index int) (Device, error) {
		input := cfg.Input
		format := cfg.Format
		if input == "" {
			input = "/dev/video" + strconv.Itoa(index)
			if format == "" {
				format = "v4l2"
			}
		}

		width, height := cfg.Width, cfg.Height
		if width <= 0 || height <= 0 {
			if cfg.Input != "" {
				w, h, err := probeSize(input)
				if err != nil {
					return nil, err
				}
				width, height = w, h
			} else {
				width, height = DefaultRawWidth, DefaultRawHeight
			}
		}

		inArgs := ffmpeg.KwArgs{}
		if format != "" {
			inArgs["f"] = format
		}
		outArgs := ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgb24",
			"s":       fmt.Sprintf("%dx%d", width, height),
		}
		if cfg.FrameRate > 0 {
			outArgs["r"] = strconv.Itoa(cfg.FrameRate)
		}

		ctx, cancel := context.WithCancel(context.Background())
		pr, pw := io.Pipe()

		stream := ffmpeg.Input(input, inArgs).
			Output("pipe:1", outArgs).
			WithOutput(pw).
			WithErrorOutput(io.Discard)
		stream.Context = ctx

		cmd := stream.Compile()
		if err := cmd.Start(); err != nil {
			cancel()
			pw.Close()
			return nil, fmt.Errorf("start ffmpeg: %w", err)
		}

		done := make(chan error, 1)
		go func() {
			err := cmd.Wait()
			pw.CloseWithError(err)
			done <- err
		}()

		return &ffmpegDevice{
			width:  width,
			height: height,
			pipe:   pr,
			cancel: cancel,
			done:   done,
			buf:    make([]byte, width*height*3),
		}, nil
	}
}

func (d *ffmpegDevice) Read() (image.Image, bool) {
	if _, err := io.ReadFull(d.pipe, d.buf); err != nil {
		return nil, false
	}

	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	for i, j := 0, 0; i < len(d.buf); i, j = i+3, j+4 {
		img.Pix[j] = d.buf[i]
		img.Pix[j+1] = d.buf[i+1]
		img.Pix[j+2] = d.buf[i+2]
		img.Pix[j+3] = 255
	}
	return img, true
}

func (d *ffmpegDevice) Release() error {
	d.cancel()
	d.pipe.Close()
	// The process was killed on purpose; its exit status is not an error.
	<-d.done
	return nil
}
