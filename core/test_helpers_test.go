package core

import (
	"context"
	"sync"
)

type stubAccount struct {
	scheme       AccountScheme
	token        string
	user         AccountCreationUser
	needsRefresh bool
	serialized   string
	serializeErr error
	exchange     func(ctx context.Context, completion func(error))
	exchanges    int
	merged       []Account
}

func (a *stubAccount) Scheme() AccountScheme                   { return a.scheme }
func (a *stubAccount) OwningAccountsNeedCloudFolderName() bool { return false }
func (a *stubAccount) AccessToken() string                     { return a.token }
func (a *stubAccount) CreationUser() AccountCreationUser       { return a.user }
func (a *stubAccount) NeedsTokenRegeneration(Account) bool     { return a.needsRefresh }
func (a *stubAccount) Merge(newer Account)                     { a.merged = append(a.merged, newer) }

func (a *stubAccount) Serialize() (string, error) {
	if a.serializeErr != nil {
		return "", a.serializeErr
	}
	if a.serialized == "" {
		return "{}", nil
	}
	return a.serialized, nil
}

func (a *stubAccount) ExchangeToken(ctx context.Context, completion func(error)) {
	a.exchanges++
	if a.exchange != nil {
		a.exchange(ctx, completion)
		return
	}
	completion(nil)
}

type stubFactory struct {
	scheme       AccountScheme
	account      *stubAccount
	err          error
	lastConfig   any
	lastJSON     string
	lastProps    AccountProperties
	lastDelegate AccountDelegate
}

func (f *stubFactory) Scheme() AccountScheme { return f.scheme }

func (f *stubFactory) PropertiesFromHeaders(headers AccountHeaders) map[string]any {
	out := map[string]any{}
	if token, ok := headers.Lookup(HTTPOAuth2AccessTokenKey); ok {
		out[HTTPOAuth2AccessTokenKey] = token
	}
	return out
}

func (f *stubFactory) FromProperties(
	props AccountProperties,
	user AccountCreationUser,
	configuration any,
	delegate AccountDelegate,
) (Account, error) {
	f.lastProps = props
	f.lastConfig = configuration
	f.lastDelegate = delegate
	if f.err != nil {
		return nil, f.err
	}
	if f.account == nil {
		return nil, nil
	}
	f.account.user = user
	if token, ok := props.Properties[HTTPOAuth2AccessTokenKey].(string); ok {
		f.account.token = token
	}
	return f.account, nil
}

func (f *stubFactory) FromJSON(
	json string,
	user AccountCreationUser,
	configuration any,
	delegate AccountDelegate,
) (Account, error) {
	f.lastJSON = json
	f.lastConfig = configuration
	f.lastDelegate = delegate
	if f.err != nil {
		return nil, f.err
	}
	if f.account == nil {
		return nil, nil
	}
	f.account.user = user
	return f.account, nil
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

func hasCounter(items []capturedCounter, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasHistogram(items []capturedHistogram, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasLog(items []capturedLog, level string, message string, eventType string) bool {
	for _, item := range items {
		if item.level != level || item.msg != message {
			continue
		}
		if item.fields["event_type"] == eventType {
			return true
		}
	}
	return false
}
