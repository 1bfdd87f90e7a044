package popstage

import "time"

// NoticeKind is one of the two notification kinds the stage emits.
type NoticeKind uint8

const (
	NoticeSuccess NoticeKind = iota // accepted upload
	NoticeError                     // validation or submission failure
)

func (k NoticeKind) String() string {
	if k == NoticeError {
		return "error"
	}
	return "success"
}

// uploadSuccessMessage is the text of the accepted-upload notice.
const uploadSuccessMessage = "Audio file uploaded!"

// Notice is a user-visible notification.
type Notice struct {
	Kind    NoticeKind
	Message string
	// At is the stage time the notice was raised.
	At time.Duration
}

// Notifier receives notices. Rendering them is the host's concern.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// multiNotifier fans a notice out to several notifiers in order.
type multiNotifier []Notifier

func (m multiNotifier) Notify(n Notice) {
	for _, nt := range m {
		nt.Notify(n)
	}
}

// MultiNotifier returns a Notifier that forwards to every non-nil notifier.
func MultiNotifier(notifiers ...Notifier) Notifier {
	out := make(multiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

const defaultNoticeCap = 8

// NoticeQueue keeps the most recent notices for an on-screen overlay.
// When full, the oldest notice is dropped.
type NoticeQueue struct {
	notices []Notice
	cap     int
	// TTL is how long a notice stays visible; zero keeps notices until
	// they are pushed out.
	TTL time.Duration
}

// NewNoticeQueue creates a queue holding at most capacity notices.
func NewNoticeQueue(capacity int, ttl time.Duration) *NoticeQueue {
	if capacity <= 0 {
		capacity = defaultNoticeCap
	}
	return &NoticeQueue{cap: capacity, TTL: ttl}
}

// Notify appends n, evicting the oldest notice if the queue is full.
func (q *NoticeQueue) Notify(n Notice) {
	if len(q.notices) == q.cap {
		copy(q.notices, q.notices[1:])
		q.notices = q.notices[:len(q.notices)-1]
	}
	q.notices = append(q.notices, n)
}

// Visible returns the notices still visible at now, oldest first, and
// forgets expired ones. The returned slice MUST NOT be retained.
func (q *NoticeQueue) Visible(now time.Duration) []Notice {
	if q.TTL > 0 {
		keep := q.notices[:0]
		for _, n := range q.notices {
			if now-n.At < q.TTL {
				keep = append(keep, n)
			}
		}
		clear(q.notices[len(keep):])
		q.notices = keep
	}
	return q.notices
}

// Len returns the number of queued notices.
func (q *NoticeQueue) Len() int {
	return len(q.notices)
}
