package domain

import "time"

// Platform обозначает социальную сеть, для которой готовится пост.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformX         Platform = "x"
)

// DefaultPlatforms используется, если клиент не передал список платформ.
var DefaultPlatforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformLinkedIn, PlatformX}

// PostStatus описывает жизненный цикл черновика.
type PostStatus string

const (
	// PostStatusDraft присваивается каждому сгенерированному посту.
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
)

// Company описывает профиль компании.
type Company struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tone        string            `json:"tone,omitempty"`
	SiteURL     string            `json:"site_url"`
	LogoURL     string            `json:"logo_url,omitempty"`
	Socials     map[string]string `json:"socials,omitempty"`
	Colors      map[string]string `json:"colors,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CrawledPage описывает сырую страницу от краулера. Не сохраняется.
type CrawledPage struct {
	URL  string
	HTML string
}

// Product описывает кандидата в продукт, извлечённого со страницы сайта.
type Product struct {
	ID        int64     `json:"id,omitempty"`
	CompanyID int64     `json:"company_id,omitempty"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Price     string    `json:"price,omitempty"`
	Images    []string  `json:"images"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Post описывает черновик публикации для одной платформы в один день.
type Post struct {
	ID          int64      `json:"id,omitempty"`
	PlanID      int64      `json:"plan_id,omitempty"`
	Platform    Platform   `json:"platform"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Caption     string     `json:"caption"`
	Hashtags    []string   `json:"hashtags"`
	ImagePrompt string     `json:"image_prompt"`
	Status      PostStatus `json:"status"`
}

// WeeklyPlan содержит посты на неделю.
type WeeklyPlan struct {
	ID        int64      `json:"id,omitempty"`
	CompanyID int64      `json:"company_id"`
	WeekStart time.Time  `json:"week_start"`
	Platform  string     `json:"platform,omitempty"`
	Status    PostStatus `json:"status,omitempty"`
	Posts     []Post     `json:"posts,omitempty"`
}

// Issue описывает одно нарушение правил SEO-аудита.
type Issue struct {
	ID  string `json:"id"`
	Msg string `json:"msg"`
}

// SeoAuditResult содержит результат аудита одной страницы.
type SeoAuditResult struct {
	ID          int64     `json:"id,omitempty"`
	CompanyID   int64     `json:"company_id,omitempty"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	H1          string    `json:"h1"`
	MetaDesc    string    `json:"meta_desc"`
	Score       int       `json:"score"`
	Issues      []Issue   `json:"issues"`
	LastChecked time.Time `json:"last_checked"`
}

// Competitor хранит ссылку на конкурента компании.
type Competitor struct {
	ID        int64             `json:"id,omitempty"`
	CompanyID int64             `json:"company_id,omitempty"`
	Name      string            `json:"name,omitempty"`
	URL       string            `json:"url"`
	Socials   map[string]string `json:"socials,omitempty"`
}

// CompetitorAnalysis содержит облегчённый отчёт по конкуренту.
type CompetitorAnalysis struct {
	ID           int64    `json:"id,omitempty"`
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	CadenceGuess string   `json:"cadence_guess,omitempty"`
	TopicGuess   []string `json:"topic_guess,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// IngestStats возвращается после прогона индексации сайта.
type IngestStats struct {
	Pages    int `json:"pages"`
	Products int `json:"products"`
}
