package domain

import "time"

// AccountType описывает тип учётной записи.
type AccountType string

const (
	AccountTypeAdmin    AccountType = "admin"
	AccountTypeEmployer AccountType = "employer"
	AccountTypeFree     AccountType = "free_user"
	AccountTypePremium  AccountType = "premium"
)

const (
	SubscriptionFree    = "free"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Account хранит состояние пользователя, от которого зависит доступ.
type Account struct {
	UserID             string      `json:"id"`
	Email              string      `json:"email,omitempty"`
	FullName           string      `json:"full_name,omitempty"`
	AccountType        AccountType `json:"account_type"`
	SubscriptionStatus string      `json:"subscription_status"`
	SubscriptionEnd    *time.Time  `json:"subscription_end_date,omitempty"`
	InterviewsTaken    int         `json:"interviews_taken"`
	RazorpayOrderID    string      `json:"-"`
	RazorpayPaymentID  string      `json:"-"`
	LastPaymentAt      *time.Time  `json:"last_payment_date,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (a Account) IsAdmin() bool {
	return a.AccountType == AccountTypeAdmin
}

// AccountIdentity — данные из токена, с которыми создаётся учётная запись.
type AccountIdentity struct {
	UserID   string
	Email    string
	FullName string
}

// Profile описывает анкету пользователя и статистику практики.
type Profile struct {
	UserID              string    `json:"user_id"`
	ProfilePhoto        string    `json:"profile_photo"`
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Location            string    `json:"location"`
	Role                string    `json:"role"`
	ExperienceLevel     string    `json:"experience_level"`
	CourseName          string    `json:"course_name"`
	CollegeName         string    `json:"college_name"`
	BranchName          string    `json:"branch_name"`
	RollNumber          string    `json:"roll_number"`
	YearOfPassing       string    `json:"year_of_passing"`
	ProfileCompleted    bool      `json:"profile_completed"`
	CompletedInterviews int       `json:"completed_interviews"`
	HoursPracticed      float64   `json:"hours_practiced"`
	AverageScore        float64   `json:"average_score"`
	TotalScore          float64   `json:"total_score"`
	Scores              []int     `json:"scores"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProfileUpdate содержит только переданные поля анкеты.
type ProfileUpdate struct {
	ProfilePhoto    *string `json:"profile_photo"`
	FullName        *string `json:"full_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Location        *string `json:"location"`
	Role            *string `json:"role"`
	ExperienceLevel *string `json:"experience_level"`
	CourseName      *string `json:"course_name"`
	CollegeName     *string `json:"college_name"`
	BranchName      *string `json:"branch_name"`
	RollNumber      *string `json:"roll_number"`
	YearOfPassing   *string `json:"year_of_passing"`
}

// Apply переносит заданные поля в анкету и пересчитывает признак заполненности.
func (u ProfileUpdate) Apply(p Profile) Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.ProfilePhoto, u.ProfilePhoto)
	set(&p.FullName, u.FullName)
	set(&p.Email, u.Email)
	set(&p.Phone, u.Phone)
	set(&p.Location, u.Location)
	set(&p.Role, u.Role)
	set(&p.ExperienceLevel, u.ExperienceLevel)
	set(&p.CourseName, u.CourseName)
	set(&p.CollegeName, u.CollegeName)
	set(&p.BranchName, u.BranchName)
	set(&p.RollNumber, u.RollNumber)
	set(&p.YearOfPassing, u.YearOfPassing)
	p.ProfileCompleted = p.IsComplete()
	return p
}

// IsComplete проверяет обязательные поля анкеты.
func (p Profile) IsComplete() bool {
	for _, v := range []string{p.FullName, p.CourseName, p.CollegeName, p.BranchName, p.RollNumber, p.YearOfPassing} {
		if v == "" {
			return false
		}
	}
	return true
}
