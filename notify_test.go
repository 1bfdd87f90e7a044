package popstage

import (
	"testing"
	"time"
)

func TestNoticeQueueEvictsOldest(t *testing.T) {
	q := NewNoticeQueue(2, 0)
	q.Notify(Notice{Message: "a"})
	q.Notify(Notice{Message: "b"})
	q.Notify(Notice{Message: "c"})
	got := q.Visible(time.Hour)
	if len(got) != 2 || got[0].Message != "b" || got[1].Message != "c" {
		t.Errorf("Visible = %v, want [b c]", got)
	}
}

func TestNoticeQueueTTL(t *testing.T) {
	q := NewNoticeQueue(0, time.Second)
	q.Notify(Notice{Message: "old", At: 0})
	q.Notify(Notice{Message: "new", At: 800 * time.Millisecond})

	got := q.Visible(1500 * time.Millisecond)
	if len(got) != 1 || got[0].Message != "new" {
		t.Errorf("Visible = %v, want [new]", got)
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1 after expiry", q.Len())
	}
}

func TestNoticeQueueDefaultCapacity(t *testing.T) {
	q := NewNoticeQueue(0, 0)
	for i := 0; i < 20; i++ {
		q.Notify(Notice{})
	}
	if q.Len() != defaultNoticeCap {
		t.Errorf("Len = %d, want %d", q.Len(), defaultNoticeCap)
	}
}

func TestMultiNotifier(t *testing.T) {
	var a, b []Notice
	n := MultiNotifier(
		NotifierFunc(func(x Notice) { a = append(a, x) }),
		nil,
		NotifierFunc(func(x Notice) { b = append(b, x) }),
	)
	n.Notify(Notice{Kind: NoticeError, Message: "boom"})
	if len(a) != 1 || len(b) != 1 || b[0].Message != "boom" {
		t.Errorf("a=%v b=%v", a, b)
	}
}

func TestNoticeKindString(t *testing.T) {
	if NoticeSuccess.String() != "success" || NoticeError.String() != "error" {
		t.Error("NoticeKind.String")
	}
}
