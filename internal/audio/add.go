// /internal/audio/add.go
package audio

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"soundbot/internal/storage"
	"soundbot/internal/trigger"

	youtube "github.com/kkdai/youtube/v2"
)

// metadataFunc resolves the total length in seconds of a remote media URL.
type metadataFunc func(rawURL string) (float64, error)

var addReaction = &trigger.Reaction[*storage.AudioInfo]{
	ReactionName: "add",
	Short:        "Stores a new audio command from a youtube link or an mp3 attachment",
	Pre: func(ctx *trigger.Context) (*storage.AudioInfo, error) {
		return parseAudioArgs(ctx.Args, messageAttachmentURL(ctx), youtubeLength)
	},
	Exec: func(ctx *trigger.Context, audio *storage.AudioInfo) error {
		if err := ctx.Storage.StoreAudioCommand(ctx.Message.GuildID, *audio); err != nil {
			if errors.Is(err, storage.ErrCommandExists) {
				return trigger.Userf(
					"Error storing the command, the command already exists; try 'update' to change it.")
			}
			return fmt.Errorf("failed to store audio command %q: %w", audio.Command, err)
		}
		return ctx.Reply("I stored your new command!")
	},
}

func messageAttachmentURL(ctx *trigger.Context) string {
	if len(ctx.Message.Attachments) == 0 {
		return ""
	}
	return ctx.Message.Attachments[0].URL
}

// parseAudioArgs validates the whitespace-delimited `command url duration
// start` arguments and builds the AudioInfo document to persist. Exactly one
// of a media URL or an mp3 attachment must be present.
func parseAudioArgs(args, attachmentURL string, metadata metadataFunc) (*storage.AudioInfo, error) {
	fields := strings.Fields(args)
	var command, rawURL, duration, start string
	if len(fields) > 0 {
		command = fields[0]
	}
	if len(fields) > 1 {
		rawURL = fields[1]
	}
	if len(fields) > 2 {
		duration = fields[2]
	}
	if len(fields) > 3 {
		start = fields[3]
	}

	if command == "" {
		return nil, trigger.Userf("You didn't provide a name for your command")
	}
	if duration != "" {
		if _, err := strconv.ParseFloat(duration, 64); err != nil {
			return nil, trigger.Userf("The duration you provided is not a number")
		}
	}
	if start != "" {
		if _, err := strconv.ParseFloat(start, 64); err != nil {
			return nil, trigger.Userf("The beginning timestamp you provided is not a number")
		}
	}

	switch {
	case rawURL != "":
		return parseYoutubeSource(command, rawURL, duration, start, metadata)
	case attachmentURL != "":
		return parseAttachmentSource(command, attachmentURL)
	default:
		return nil, trigger.Userf("You must either attach an audio file or provide a youtube link!")
	}
}

func parseYoutubeSource(command, rawURL, duration, start string, metadata metadataFunc) (*storage.AudioInfo, error) {
	length, err := metadata(rawURL)
	if err != nil {
		return nil, trigger.Userf("The provided youtube link is invalid or the video is not available!")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, trigger.Userf("The provided youtube link is invalid or the video is not available!")
	}

	// Start offset: explicit argument wins, then the URL's time parameter,
	// then the beginning of the video.
	startTime := 0.0
	if start != "" {
		startTime, _ = strconv.ParseFloat(start, 64)
	} else if param := parsed.Query().Get("t"); param != "" {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(param, "s"), 64); err == nil {
			startTime = v
		}
	}

	endTime := length
	if duration != "" {
		d, _ := strconv.ParseFloat(duration, 64)
		endTime = startTime + d
	}

	// The time parameter is folded into the stored range; keep the URL clean.
	query := parsed.Query()
	query.Del("t")
	parsed.RawQuery = query.Encode()

	return &storage.AudioInfo{
		Command: command,
		URL:     parsed.String(),
		Source:  storage.SourceYouTube,
		Time: &storage.AudioRange{
			Start: startTime,
			End:   endTime,
		},
	}, nil
}

func parseAttachmentSource(command, attachmentURL string) (*storage.AudioInfo, error) {
	ext := path.Ext(strippedPath(attachmentURL))
	if ext != ".mp3" {
		return nil, trigger.Userf("The provided attachment is not an mp3!")
	}

	return &storage.AudioInfo{
		Command:  command,
		URL:      attachmentURL,
		Source:   storage.SourceDiscord,
		FileType: strings.TrimPrefix(ext, "."),
	}, nil
}

// strippedPath drops any query suffix so the extension check sees the file
// name (Discord CDN links carry signing parameters).
func strippedPath(rawURL string) string {
	if parsed, err := url.Parse(rawURL); err == nil {
		return parsed.Path
	}
	return rawURL
}

// youtubeLength fetches minimal remote metadata: the video length in seconds.
func youtubeLength(rawURL string) (float64, error) {
	client := youtube.Client{}
	video, err := client.GetVideo(rawURL)
	if err != nil {
		return 0, fmt.Errorf("youtube metadata error: %w", err)
	}
	return video.Duration.Seconds(), nil
}
