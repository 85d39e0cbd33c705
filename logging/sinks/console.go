package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"blast-arena/server/logging"
)

type Console struct {
	logger *log.Logger
}

func NewConsole(w io.Writer) *Console {
	return &Console{logger: log.New(w, "", log.LstdFlags)}
}

func (s *Console) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] tick=%d severity=%s", event.Type, event.Tick, event.Severity)
	if event.RoomID != "" {
		fmt.Fprintf(&b, " room=%s", event.RoomID)
	}
	if entity := formatEntity(event.Actor); entity != "" {
		fmt.Fprintf(&b, " actor=%s", entity)
	}
	if len(event.Targets) > 0 {
		parts := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			parts = append(parts, formatEntity(target))
		}
		fmt.Fprintf(&b, " targets=%s", strings.Join(parts, ","))
	}
	if event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			fmt.Fprintf(&b, " payload=%s", data)
		} else {
			fmt.Fprintf(&b, " payload=%v", event.Payload)
		}
	}
	s.logger.Print(b.String())
	return nil
}

func (s *Console) Close(context.Context) error {
	return nil
}

func formatEntity(ref logging.EntityRef) string {
	switch {
	case ref.ID == "" && ref.Kind == "":
		return ""
	case ref.ID == "":
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	default:
		return fmt.Sprintf("%s:%s", ref.Kind, ref.ID)
	}
}
