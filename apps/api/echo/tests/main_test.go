package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darslik/apps/api/echo"
	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
	"github.com/trezcool/darslik/core/generation"
	"github.com/trezcool/darslik/core/llm"
	"github.com/trezcool/darslik/core/notify"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/core/quiz"
	"github.com/trezcool/darslik/core/user"
	emailsvc "github.com/trezcool/darslik/services/email"
	filesvc "github.com/trezcool/darslik/services/files"
	"github.com/trezcool/darslik/storage/database/inmem"
	"github.com/trezcool/darslik/tests"
)

var (
	ctxBg = context.Background()

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type env struct {
	app        Server
	conf       *core.Config
	usrRepo    user.Repository
	provRepo   provider.Repository
	courseRepo course.Repository
	quizRepo   quiz.Repository
	notifyRepo notify.Repository
	client     *llm.MockClient
	mailSvc    *emailsvc.ConsoleServiceMock
	filesDir   string
}

// mockFactory hands out the same mock client for every provider.
type mockFactory struct {
	client *llm.MockClient
}

func (f *mockFactory) NewClient(context.Context, provider.Connection) (llm.Client, error) {
	return f.client, nil
}

func setup(t *testing.T, configure ...func(conf *core.Config)) *env {
	conf := core.NewTestConfig()
	for _, fn := range configure {
		fn(conf)
	}
	logger := testutil.NopLogger{}

	// set up DB & repos
	db := inmem.NewDB()
	e := &env{
		conf:       conf,
		usrRepo:    inmem.NewUserRepository(db),
		provRepo:   inmem.NewProviderRepository(db),
		courseRepo: inmem.NewCourseRepository(db),
		quizRepo:   inmem.NewQuizRepository(db),
		notifyRepo: inmem.NewNotifyRepository(db),
		client:     llm.NewMockClient(),
		mailSvc:    emailsvc.NewConsoleServiceMock(conf, logger),
		filesDir:   t.TempDir(),
	}

	files, err := filesvc.NewLocalStore(e.filesDir, conf.Files.PublicBaseURL)
	require.NoError(t, err)

	// set up services
	usrSvc := user.NewService(e.usrRepo)
	providerSvc := provider.NewService(e.provRepo)
	courseSvc := course.NewService(e.courseRepo, files)
	notifySvc := notify.NewService(e.notifyRepo, e.mailSvc)
	quizSvc := quiz.NewService(e.quizRepo, courseSvc, usrSvc, notifySvc, conf.Generation.Language)

	factory := &mockFactory{client: e.client}
	gen := generation.NewGenerator(conf.Generation, generation.NoopMetrics{})

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	provider.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	// set up server
	e.app = NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		UserSvc:     usrSvc,
		ProviderSvc: providerSvc,
		CourseSvc:   courseSvc,
		QuizSvc:     quizSvc,
		NotifySvc:   notifySvc,
		CourseGen:   generation.NewCourseGenerator(e.courseRepo, e.quizRepo, e.provRepo, factory, gen, logger),
		FeedbackGen: generation.NewFeedbackGenerator(e.courseRepo, e.quizRepo, e.provRepo, factory, gen),
		Assistant:   generation.NewAssistant(courseSvc, providerSvc, factory, gen),
	})
	return e
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func (e *env) teacher(t *testing.T, name string) user.User {
	return testutil.CreateUser(t, e.usrRepo, name, name, name+"@test.uz", "", []string{user.RoleTeacher}, true)
}

func (e *env) student(t *testing.T, name string) user.User {
	return testutil.CreateUser(t, e.usrRepo, name, name, name+"@test.uz", "", []string{user.RoleStudent}, true)
}

func (e *env) token(t *testing.T, usr user.User) string {
	token, err := GenerateToken(e.conf, GetUserClaims(e.conf, usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

func (e *env) serve(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newUploadRequest(t *testing.T, path, token, fileName string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
