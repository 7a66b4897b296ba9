package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/internal/test"
)

func TestMsgIDs(t *testing.T) {
	for id := logger.MsgID_None; id <= logger.MsgID_END; id++ {
		str := logger.MsgIDToString(id)
		if str == "" {
			continue
		}

		overrides := make(map[logger.MsgID]logger.LogLevel)
		logger.StringToMsgIDs(str, logger.LevelError, overrides)
		if len(overrides) == 0 {
			t.Fatalf("Failed to find message id(s) for the string %q", str)
		}

		for k, v := range overrides {
			test.AssertEqual(t, logger.MsgIDToString(k), str)
			test.AssertEqual(t, v, logger.LevelError)
		}
	}
}

func TestDeferLogSortsByKind(t *testing.T) {
	log := logger.NewDeferLog()
	log.AddID(logger.MsgID_Selection_UnknownLanguage, logger.Warning, "b")
	log.AddError("a")
	log.AddID(logger.MsgID_Selection_UnknownFeature, logger.Warning, "c")
	test.AssertEqual(t, log.HasErrors(), true)

	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 3)
	test.AssertEqual(t, msgs[0].Text, "a")
	test.AssertEqual(t, msgs[1].Text, "c")
	test.AssertEqual(t, msgs[2].Text, "b")
}

func TestToAPIMessages(t *testing.T) {
	msgs := []logger.Msg{
		{Kind: logger.Error, Text: "broken"},
		{Kind: logger.Warning, ID: logger.MsgID_Build_DynamicPublicPath, Text: "dynamic", Notes: []string{"hint"}},
	}

	warnings := logger.ToAPIMessages("monaco", msgs, logger.Warning)
	test.AssertEqual(t, len(warnings), 1)
	test.AssertEqual(t, warnings[0].ID, "dynamic-public-path")
	test.AssertEqual(t, warnings[0].PluginName, "monaco")
	test.AssertEqual(t, warnings[0].Notes[0].Text, "hint")

	errors := logger.ToAPIMessages("monaco", msgs, logger.Error)
	test.AssertEqual(t, len(errors), 1)
	test.AssertEqual(t, errors[0].ID, "")
	test.AssertEqual(t, errors[0].Text, "broken")
}

func TestStderrLogRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewStderrLog(logger.StderrOptions{
		Writer:   &buf,
		Color:    logger.ColorNever,
		LogLevel: logger.LevelWarning,
	})
	log.AddMsg(logger.Msg{Kind: logger.Info, Text: "hidden"})
	log.AddID(logger.MsgID_Selection_UnknownLanguage, logger.Warning, "shown")
	msgs := log.Done()

	test.AssertEqual(t, len(msgs), 2)
	test.AssertEqual(t, log.HasErrors(), false)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("unexpected info output: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "unknown-language") {
		t.Fatalf("missing warning output: %q", out)
	}
}
