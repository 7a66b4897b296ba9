package logger

// Diagnostics are collected the same way whether they come from constructing
// the plugin or from a single build: everything goes through a "Log" and is
// later converted into esbuild messages or printed to stderr.

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/muesli/termenv"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Info
	Debug
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		panic("Internal error")
	}
}

type Msg struct {
	Notes []string
	Text  string
	ID    MsgID
	Kind  MsgKind
}

// This type is just so we can use Go's native sort function
type msgsArray []Msg

func (a msgsArray) Len() int          { return len(a) }
func (a msgsArray) Swap(i int, j int) { a[i], a[j] = a[j], a[i] }

func (a msgsArray) Less(i int, j int) bool {
	ai := a[i]
	aj := a[j]

	// Kind
	if ai.Kind != aj.Kind {
		return ai.Kind < aj.Kind
	}

	// ID
	if ai.ID != aj.ID {
		return ai.ID < aj.ID
	}

	// Text
	return ai.Text < aj.Text
}

func (log Log) AddError(text string) {
	log.AddMsg(Msg{Kind: Error, Text: text})
}

func (log Log) AddErrorWithNotes(text string, notes []string) {
	log.AddMsg(Msg{Kind: Error, Text: text, Notes: notes})
}

func (log Log) AddID(id MsgID, kind MsgKind, text string) {
	log.AddMsg(Msg{ID: id, Kind: kind, Text: text})
}

func (log Log) AddIDWithNotes(id MsgID, kind MsgKind, text string, notes []string) {
	log.AddMsg(Msg{ID: id, Kind: kind, Text: text, Notes: notes})
}

func NewDeferLog() Log {
	var msgs msgsArray
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type StderrOptions struct {
	// Defaults to "os.Stderr"
	Writer io.Writer

	Prefix   string
	Color    StderrColor
	LogLevel LogLevel
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
	Height          int
}

// NewStderrLog prints messages as they arrive. Messages below the configured
// level are still recorded and returned from "Done".
func NewStderrLog(options StderrOptions) Log {
	var mutex sync.Mutex
	var msgs msgsArray
	errors := 0
	warnings := 0

	writer := options.Writer
	terminalInfo := TerminalInfo{}
	if writer == nil {
		writer = os.Stderr
		terminalInfo = GetTerminalInfo(os.Stderr)
	}
	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = SupportsColorEscapes
	}

	prefix := options.Prefix
	if prefix == "" {
		prefix = "monaco"
	}
	sink := log.NewWithOptions(writer, log.Options{Prefix: prefix})
	sink.SetLevel(charmLevel(options.LogLevel))
	if terminalInfo.UseColorEscapes {
		sink.SetColorProfile(termenv.ANSI)
	} else {
		sink.SetColorProfile(termenv.Ascii)
	}

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)

			keyvals := make([]interface{}, 0, 2+2*len(msg.Notes))
			if msg.ID != MsgID_None {
				keyvals = append(keyvals, "id", MsgIDToString(msg.ID))
			}
			for _, note := range msg.Notes {
				keyvals = append(keyvals, "note", note)
			}

			switch msg.Kind {
			case Error:
				errors++
				sink.Error(msg.Text, keyvals...)
			case Warning:
				warnings++
				sink.Warn(msg.Text, keyvals...)
			case Info:
				sink.Info(msg.Text, keyvals...)
			case Debug:
				sink.Debug(msg.Text, keyvals...)
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return errors > 0
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()

			if options.LogLevel <= LevelInfo && (warnings != 0 || errors != 0) {
				sink.Info(errorAndWarningSummary(errors, warnings))
			}

			sort.Stable(msgs)
			return msgs
		},
	}
}

func charmLevel(level LogLevel) log.Level {
	switch level {
	case LevelNone, LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarning:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.FatalLevel + 1
	}
}

func plural(prefix string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, prefix)
	}
	return fmt.Sprintf("%d %ss", count, prefix)
}

func errorAndWarningSummary(errors int, warnings int) string {
	switch {
	case errors == 0:
		return plural("warning", warnings)
	case warnings == 0:
		return plural("error", errors)
	default:
		return fmt.Sprintf("%s and %s",
			plural("warning", warnings),
			plural("error", errors))
	}
}

// ToAPIMessages converts every message of the given kind into the form esbuild
// expects from plugin callbacks. The message ID is carried over so it can be
// matched against esbuild's "LogOverride" option.
func ToAPIMessages(pluginName string, msgs []Msg, kind MsgKind) []api.Message {
	var result []api.Message
	for _, msg := range msgs {
		if msg.Kind != kind {
			continue
		}
		var notes []api.Note
		for _, note := range msg.Notes {
			notes = append(notes, api.Note{Text: note})
		}
		result = append(result, api.Message{
			ID:         MsgIDToString(msg.ID),
			PluginName: pluginName,
			Text:       msg.Text,
			Notes:      notes,
		})
	}
	return result
}

// FromAPIMessages is the reverse of "ToAPIMessages" and is used to forward
// diagnostics from child builds. Locations are folded into the text.
func FromAPIMessages(log Log, msgs []api.Message, id MsgID, kind MsgKind) {
	for _, msg := range msgs {
		text := msg.Text
		if loc := msg.Location; loc != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, text)
		}
		var notes []string
		for _, note := range msg.Notes {
			notes = append(notes, strings.TrimSpace(note.Text))
		}
		log.AddMsg(Msg{ID: id, Kind: kind, Text: text, Notes: notes})
	}
}

// See https://no-color.org/
func hasNoColorEnvironmentVariable() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}
