// Package template renders notification titles and messages from a fixed,
// kind-keyed template table. Rendering happens exactly once, at dispatch
// time; the stored strings are never re-rendered.
package template

import (
	"fmt"
	"strings"

	"github.com/workhive/notify/internal/modules/notification/domain"
)

// Rendered is the factory output: display strings plus the icon hint the
// client uses for the bell list. No storage identity, no timestamps — the
// caller owns those.
type Rendered struct {
	Title   string
	Message string
	Icon    string
}

type entry struct {
	title   string
	message string
	icon    string
}

// Placeholders use {name} tokens substituted from the dispatch context map.
// A template referencing a field the context does not carry fails the whole
// dispatch: a half-rendered message shown to a real user is worse than a
// failed notification.
var templates = map[domain.Kind]entry{
	domain.KindJobApplication: {
		title:   "新しい応募があります",
		message: "{worker_name}さんが「{job_title}」に応募しました。",
		icon:    "briefcase",
	},
	domain.KindApplicationApproved: {
		title:   "応募が承認されました",
		message: "「{job_title}」への応募が承認されました。仕事を開始できます。",
		icon:    "check-circle",
	},
	domain.KindApplicationRejected: {
		title:   "応募結果のお知らせ",
		message: "「{job_title}」への応募は今回は見送られました。",
		icon:    "x-circle",
	},
	domain.KindNewMessage: {
		title:   "新着メッセージ",
		message: "{sender_name}さんからメッセージが届きました。",
		icon:    "mail",
	},
	domain.KindJobCompleted: {
		title:   "仕事が完了しました",
		message: "「{job_title}」が完了しました。納品内容をご確認ください。",
		icon:    "flag",
	},
	domain.KindPaymentReceived: {
		title:   "報酬が支払われました",
		message: "「{job_title}」の報酬{amount}円が支払われました。",
		icon:    "yen",
	},
	domain.KindSystemAnnouncement: {
		title:   "運営からのお知らせ",
		message: "{announcement}",
		icon:    "megaphone",
	},
}

// Render produces the display strings for kind from data. It is pure and
// deterministic: no I/O, no clock, no side effects.
//
// Unknown kinds fail with domain.ErrUnknownNotificationKind; a placeholder
// absent from data fails with domain.ErrMissingTemplateField naming the
// field.
func Render(kind domain.Kind, data domain.ContextMap) (Rendered, error) {
	tpl, ok := templates[kind]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %q", domain.ErrUnknownNotificationKind, kind)
	}

	title, err := substitute(tpl.title, data)
	if err != nil {
		return Rendered{}, err
	}
	message, err := substitute(tpl.message, data)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{Title: title, Message: message, Icon: tpl.icon}, nil
}

// Fields returns the placeholder names the kind's template requires, for
// callers that want to validate context maps up front.
func Fields(kind domain.Kind) ([]string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNotificationKind, kind)
	}
	seen := map[string]bool{}
	var fields []string
	for _, s := range []string{tpl.title, tpl.message} {
		for _, name := range placeholders(s) {
			if !seen[name] {
				seen[name] = true
				fields = append(fields, name)
			}
		}
	}
	return fields, nil
}

func substitute(s string, data domain.ContextMap) (string, error) {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		close := strings.IndexByte(s[open:], '}')
		if close < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		name := s[open+1 : open+close]
		value, ok := data[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrMissingTemplateField, name)
		}
		b.WriteString(s[:open])
		b.WriteString(value)
		s = s[open+close+1:]
	}
}

func placeholders(s string) []string {
	var names []string
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			return names
		}
		close := strings.IndexByte(s[open:], '}')
		if close < 0 {
			return names
		}
		names = append(names, s[open+1:open+close])
		s = s[open+close+1:]
	}
}
