package domain

// Columns is the fixed column order of the application log workbook.
// The header row is written from this list when a new workbook is created,
// and every data row must follow the same order.
func Columns() []string {
	return []string{
		"timestamp",
		"name",
		"email",
		"phone",
		"location",
		"start_date",
		"visa",
		"expertise",
		"links",
		"why_kedorion",
		"resume_filename",
	}
}

// Application is one accepted submission, normalized and ready to be
// appended to the log. Field order mirrors Columns.
type Application struct {
	Timestamp      string
	Name           string
	Email          string
	Phone          string
	Location       string
	StartDate      string
	Visa           string
	Expertise      string
	Links          string
	WhyKedorion    string
	ResumeFilename string
}

// Row returns the application's values in Columns order
func (a *Application) Row() []interface{} {
	return []interface{}{
		a.Timestamp,
		a.Name,
		a.Email,
		a.Phone,
		a.Location,
		a.StartDate,
		a.Visa,
		a.Expertise,
		a.Links,
		a.WhyKedorion,
		a.ResumeFilename,
	}
}

// Submission is one incoming application form post, parsed but not yet
// validated. Validator field names follow the form tag so rejection
// messages report the names the form actually posted.
type Submission struct {
	Name      string `form:"name" validate:"required"`
	Email     string `form:"email" validate:"required"`
	Phone     string `form:"phone" validate:"required"`
	Location  string `form:"location" validate:"required"`
	StartDate string `form:"start_date" validate:"required"`
	Visa      string `form:"visa" validate:"required"`

	// Optional fields
	Expertise      []string `form:"expertise[]"`
	Links          string   `form:"links"`
	Info           string   `form:"info"`
	RecaptchaToken string   `form:"recaptcha_token"`

	// Resume upload
	ResumeFilename string
	Resume         []byte
}
