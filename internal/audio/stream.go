// /internal/audio/stream.go
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"soundbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	youtube "github.com/kkdai/youtube/v2"
	"layeh.com/gopus"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// openStream resolves a stored audio command into a raw PCM stream: direct
// ffmpeg decode for discord-sourced attachments, a resolved stream URL for
// youtube-sourced clips. The returned cleanup kills the decoder process.
func openStream(audio *storage.AudioInfo) (io.ReadCloser, func(), error) {
	switch audio.Source {
	case storage.SourceYouTube:
		link, err := youtubeStreamURL(audio.URL)
		if err != nil {
			return nil, nil, err
		}
		return ffmpegDecode(link, audio.Time)
	default:
		return ffmpegDecode(audio.URL, audio.Time)
	}
}

func youtubeStreamURL(rawURL string) (string, error) {
	client := youtube.Client{}

	video, err := client.GetVideo(rawURL)
	if err != nil {
		return "", fmt.Errorf("youtube client error: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", errors.New("no audio formats found for video")
	}

	link, err := client.GetStreamURL(video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("get stream URL error: %w", err)
	}
	return link, nil
}

// ffmpegDecode spawns ffmpeg decoding url to interleaved s16le PCM on stdout,
// seeking and trimming to the clip range when one is set.
func ffmpegDecode(url string, clip *storage.AudioRange) (io.ReadCloser, func(), error) {
	args := []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
	}
	if clip != nil {
		args = append(args, "-ss", fmt.Sprintf("%.3f", clip.Start))
	}
	args = append(args, "-i", url)
	if clip != nil && clip.End > clip.Start {
		args = append(args, "-t", fmt.Sprintf("%.3f", clip.End-clip.Start))
	}
	args = append(args,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	cmd := exec.Command("ffmpeg", args...)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		cmd.Process.Kill()
	}

	return reader, cleanup, nil
}

// streamToVoice encodes the PCM stream to opus and feeds the voice
// connection until the stream ends or stop is closed.
func streamToVoice(stream io.ReadCloser, stop <-chan struct{}, vc *discordgo.VoiceConnection) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	defer stream.Close()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-stop:
			return nil
		default:
			_, err := io.ReadFull(stream, pcmBuf)
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read error: %w", err)
			}

			for i := range intBuf {
				intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
			}

			opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
			if err != nil {
				return fmt.Errorf("encode error: %w", err)
			}

			vc.OpusSend <- opus
		}
	}
}
