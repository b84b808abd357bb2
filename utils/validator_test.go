package utils

import "testing"

type signupForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Nick     string `json:"nick,omitempty" validate:"max=3"`
}

func TestValidatorStruct(t *testing.T) {
	v := NewValidator(DefaultPasswordPolicy())

	if errs := v.Struct(signupForm{Email: "a@example.com", Password: "s3cret-Pass"}); errs != nil {
		t.Fatalf("valid form rejected: %s", errs)
	}

	errs := v.Struct(signupForm{Email: "nope", Password: "short", Nick: "toolong"})
	want := map[string]string{
		"email":    "email must be a valid email",
		"password": DefaultPasswordPolicy().Describe(),
		"nick":     "nick must be at most 3 characters",
	}
	for field, msg := range want {
		if got := errs[field]; len(got) != 1 || got[0] != msg {
			t.Errorf("%s: got %v, want %q", field, got, msg)
		}
	}

	errs = v.Struct(signupForm{})
	if got := errs["email"]; len(got) != 1 || got[0] != "email is required" {
		t.Errorf("email: got %v", got)
	}
}

func TestFieldErrorsString(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("title", "title may not be blank")
	errs.Add("content", "content is required")
	errs.Add("title", "title must be at most 255 characters")

	want := "content: content is required; title: title may not be blank, title must be at most 255 characters"
	if got := errs.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if errs.Empty() || !errs.Has("title") || errs.Has("team_id") {
		t.Error("Empty/Has disagree with contents")
	}
}
