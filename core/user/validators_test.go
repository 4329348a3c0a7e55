package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/user"
	"github.com/trezcool/darslik/storage/database/inmem"
	"github.com/trezcool/darslik/tests"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(testutil.NopLogger{})
	return validate, translator
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := newValidator()
	repo := inmem.NewUserRepository(inmem.NewDB())
	svc := user.NewService(repo)
	testutil.CreateUser(t, repo, "Taken", "taken", "taken@test.uz", "", []string{user.RoleStudent}, true)

	valid := user.NewUser{
		Name:            "Aziza Karimova",
		Username:        "aziza",
		Email:           "Aziza@Test.uz ",
		Password:        "Tosh!kent42",
		PasswordConfirm: "Tosh!kent42",
		Role:            "teacher",
	}
	with := func(mod func(nu *user.NewUser)) user.NewUser {
		nu := valid
		mod(&nu)
		return nu
	}

	tests := []struct {
		name      string
		data      user.NewUser
		wantField string
		wantMsg   string
	}{
		{name: "valid", data: valid},
		{name: "no name", data: with(func(nu *user.NewUser) { nu.Name = "  " }), wantField: "name", wantMsg: "this field is required"},
		{name: "bad role", data: with(func(nu *user.NewUser) { nu.Role = "admin" }), wantField: "role"},
		{
			name:      "no username nor email",
			data:      with(func(nu *user.NewUser) { nu.Username, nu.Email = "", "" }),
			wantField: "email", wantMsg: "one of username or email is required",
		},
		{
			name:      "password too short",
			data:      with(func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "Ab1!", "Ab1!" }),
			wantField: "password", wantMsg: "password must contain at least 8 characters",
		},
		{
			name:      "password numeric",
			data:      with(func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "1234567890", "1234567890" }),
			wantField: "password", wantMsg: "password cannot be entirely numeric",
		},
		{
			name:      "password too simple",
			data:      with(func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "toshkent42", "toshkent42" }),
			wantField: "password",
		},
		{
			name:      "password similar to username",
			data:      with(func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "Aziza!1z", "Aziza!1z" }),
			wantField: "password", wantMsg: "password cannot be similar to user attributes",
		},
		{
			name:      "common password",
			data:      with(func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "P@ssw0rd", "P@ssw0rd" }),
			wantField: "password", wantMsg: "password is too common",
		},
		{
			name:      "passwords mismatch",
			data:      with(func(nu *user.NewUser) { nu.PasswordConfirm = "Tosh!kent43" }),
			wantField: "password_confirm",
		},
		{name: "username taken", data: with(func(nu *user.NewUser) { nu.Username = "taken" }), wantField: "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			err := data.Validate(context.Background(), validate, svc)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "aziza@test.uz", data.Email)
				return
			}
			require.Error(t, err)
			fields := map[string]string{}
			switch verr := err.(type) {
			case validator.ValidationErrors:
				for _, fe := range verr {
					fields[fe.Field()] = fe.Translate(translator)
				}
			case *core.ValidationError:
				for _, fe := range verr.Fields {
					fields[fe.Field] = fe.Error
				}
			default:
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			assert.Contains(t, fields, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, fields[tt.wantField])
			}
		})
	}
}

func TestService_AddOrUpdate(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(inmem.NewUserRepository(inmem.NewDB()))

	usr, err := svc.AddOrUpdate(ctx, "Admin", "Admin ", "admin@test.uz", "Adm1n!pass", []string{user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "admin", usr.Username)
	assert.True(t, usr.IsAdmin())
	require.NoError(t, usr.CheckPassword("Adm1n!pass"))

	again, err := svc.AddOrUpdate(ctx, "", "admin", "", "N3w!password", nil)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, again.ID)
	assert.Equal(t, "Admin", again.Name)
	require.NoError(t, again.CheckPassword("N3w!password"))
}
