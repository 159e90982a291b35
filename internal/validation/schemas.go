package validation

type SignupInput struct {
	Username string
	Password string
	Name     *string
}

type SigninInput struct {
	Username string
	Password string
}

type CreatePostInput struct {
	Title   string
	Content string
}

type UpdatePostInput struct {
	ID      string
	Title   string
	Content string
}

type signupWire struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
	Name     *string `json:"name"`
}

type signinWire struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type createPostWire struct {
	Title   *string `json:"title" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type updatePostWire struct {
	ID      *string `json:"id" validate:"required"`
	Title   *string `json:"title" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type SignupSchema struct{}

func (SignupSchema) SafeParse(raw []byte) Result[SignupInput] {
	w, err := parse[signupWire](raw)
	if err != nil {
		return fail[SignupInput](err)
	}
	return ok(SignupInput{Username: deref(w.Username), Password: deref(w.Password), Name: w.Name})
}

type SigninSchema struct{}

func (SigninSchema) SafeParse(raw []byte) Result[SigninInput] {
	w, err := parse[signinWire](raw)
	if err != nil {
		return fail[SigninInput](err)
	}
	return ok(SigninInput{Username: deref(w.Username), Password: deref(w.Password)})
}

type CreatePostSchema struct{}

func (CreatePostSchema) SafeParse(raw []byte) Result[CreatePostInput] {
	w, err := parse[createPostWire](raw)
	if err != nil {
		return fail[CreatePostInput](err)
	}
	return ok(CreatePostInput{Title: deref(w.Title), Content: deref(w.Content)})
}

type UpdatePostSchema struct{}

func (UpdatePostSchema) SafeParse(raw []byte) Result[UpdatePostInput] {
	w, err := parse[updatePostWire](raw)
	if err != nil {
		return fail[UpdatePostInput](err)
	}
	return ok(UpdatePostInput{ID: deref(w.ID), Title: deref(w.Title), Content: deref(w.Content)})
}

var (
	_ Validator[SignupInput]     = SignupSchema{}
	_ Validator[SigninInput]     = SigninSchema{}
	_ Validator[CreatePostInput] = CreatePostSchema{}
	_ Validator[UpdatePostInput] = UpdatePostSchema{}
)
