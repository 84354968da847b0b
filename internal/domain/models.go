package domain

// User is a learner identified by email. Records are never deleted.
type User struct {
	ID       string                    `json:"id"`
	Name     string                    `json:"name"`
	Email    string                    `json:"email"`
	Joined   Timestamp                 `json:"joined"`
	Progress map[string]CourseProgress `json:"progress"`
}

// CourseProgress tracks a user's state for one course.
// Score stays nil until the first attempt and then mirrors the latest one.
type CourseProgress struct {
	Completed bool      `json:"completed"`
	Score     *int      `json:"score"`
	Attempts  []Attempt `json:"attempts"`
}

// Attempt is one graded quiz submission.
type Attempt struct {
	Timestamp Timestamp `json:"ts"`
	Score     int       `json:"score"`
	Raw       int       `json:"raw"`
}

// Question is a multiple-choice question; Answer indexes into Choices.
type Question struct {
	Text    string   `json:"q" yaml:"q"`
	Choices []string `json:"choices" yaml:"choices"`
	Answer  int      `json:"answer" yaml:"answer"`
}

// Course is a static catalog entry with its quiz.
type Course struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Category    string     `json:"category" yaml:"category"`
	Level       string     `json:"level" yaml:"level"`
	Hours       int        `json:"hours" yaml:"hours"`
	Description string     `json:"description" yaml:"description"`
	Image       string     `json:"image" yaml:"image"`
	Quiz        []Question `json:"quiz" yaml:"quiz"`
}

// ContactMessage is a learner question addressed to an instructor.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Course    string    `json:"course"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"ts"`
	Status    string    `json:"status"`
}

// StatusNew is the status every contact message starts with.
const StatusNew = "novo"

// Summary aggregates a user's progress over the catalog.
type Summary struct {
	CompletedCount    int  `json:"completedCount"`
	TotalCourses      int  `json:"totalCourses"`
	CompletionPercent int  `json:"completionPercent"`
	AverageScore      *int `json:"averageScore"`
}

// CourseReport is the per-course line of a progress report.
type CourseReport struct {
	CourseID       string    `json:"courseId"`
	Title          string    `json:"title"`
	Level          string    `json:"level"`
	Hours          int       `json:"hours"`
	Completed      bool      `json:"completed"`
	Score          *int      `json:"score"`
	RecentAttempts []Attempt `json:"recentAttempts"`
}

// Report is a summary plus one line per catalog course.
type Report struct {
	UserName string         `json:"userName"`
	Summary  Summary        `json:"summary"`
	Courses  []CourseReport `json:"courses"`
}

// ChatRole tags who authored a chat entry.
type ChatRole string

const (
	RoleUser ChatRole = "user"
	RoleBot  ChatRole = "bot"
)

// ChatEntry is one line of a session's chat history.
type ChatEntry struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp Timestamp `json:"ts"`
}

// Voice is the preferred browser voice label.
type Voice string

const (
	VoiceFemale  Voice = "female"
	VoiceMale    Voice = "male"
	VoiceDefault Voice = "default"
)

// Palette holds the color tokens the client applies.
type Palette struct {
	Background string `json:"bg"`
	Card       string `json:"card"`
	Accent     string `json:"accent"`
	Muted      string `json:"muted"`
}

// Preferences are the accessibility settings of a session.
type Preferences struct {
	FontSize     int     `json:"fontSize"`
	HighContrast bool    `json:"highContrast"`
	AutoRead     bool    `json:"autoRead"`
	Voice        Voice   `json:"voice"`
	Palette      Palette `json:"palette"`
}

// SpeechCue is handed to the browser speech capability.
type SpeechCue struct {
	Text  string `json:"text"`
	Voice Voice  `json:"voice"`
}
