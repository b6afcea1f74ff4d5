package topics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

const testTaxonomy = `key,en,tc,sc
landlordTenant,Landlord and Tenant,業主與租客,业主与租客
employmentDisputes,Employment Disputes,勞資糾紛,劳资纠纷
taxation,Taxation,稅務,税务
`

// fakeChatService returns scripted responses in order
type fakeChatService struct {
	responses []string
	calls     int
}

func (f *fakeChatService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	response := f.responses[f.calls%len(f.responses)]
	f.calls++
	return response, nil
}

func (f *fakeChatService) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func (f *fakeChatService) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeChatService) Close() error                          { return nil }

func writeTaxonomy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewServiceLoadsTaxonomy(t *testing.T) {
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), &fakeChatService{}, common.GetLogger())
	require.NoError(t, err)

	topics := svc.Topics()
	require.Len(t, topics, 3)
	assert.Equal(t, "landlordTenant", topics[0].Key)
	assert.Equal(t, "Landlord and Tenant", topics[0].Names[LocaleEnglish])
	assert.Equal(t, "業主與租客", topics[0].Names[LocaleTraditionalChinese])
}

func TestNewServiceRejectsMissingFile(t *testing.T) {
	_, err := NewService(filepath.Join(t.TempDir(), "missing.csv"), &fakeChatService{}, common.GetLogger())
	assert.Error(t, err)
}

func TestNewServiceRejectsEmptyTaxonomy(t *testing.T) {
	_, err := NewService(writeTaxonomy(t, "key,en,tc,sc\n"), &fakeChatService{}, common.GetLogger())
	assert.Error(t, err)
}

func TestNewServiceRejectsDuplicateKeys(t *testing.T) {
	content := "key,en,tc,sc\ntaxation,Taxation,稅務,税务\ntaxation,Taxation,稅務,税务\n"
	_, err := NewService(writeTaxonomy(t, content), &fakeChatService{}, common.GetLogger())
	assert.Error(t, err)
}

func TestTopicListRendering(t *testing.T) {
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), &fakeChatService{}, common.GetLogger())
	require.NoError(t, err)

	assert.Equal(t, "Topic List: (landlordTenant, employmentDisputes, taxation)", svc.TopicList())
}

func TestLocalizedName(t *testing.T) {
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), &fakeChatService{}, common.GetLogger())
	require.NoError(t, err)

	assert.Equal(t, "Employment Disputes", svc.LocalizedName("employmentDisputes", LocaleEnglish))
	assert.Equal(t, "劳资纠纷", svc.LocalizedName("employmentDisputes", LocaleSimplifiedChinese))
	assert.Equal(t, "unknownKey", svc.LocalizedName("unknownKey", LocaleEnglish))
}

func TestClassifyAcceptsValidRanking(t *testing.T) {
	llm := &fakeChatService{responses: []string{"1. employmentDisputes\n2. landlordTenant\n3. taxation"}}
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), llm, common.GetLogger())
	require.NoError(t, err)

	ranked, err := svc.Classify(context.Background(), "I was dismissed without notice")
	require.NoError(t, err)
	assert.Equal(t, []string{"employmentDisputes", "landlordTenant", "taxation"}, ranked)
}

func TestClassifyRetriesInvalidRanking(t *testing.T) {
	llm := &fakeChatService{responses: []string{
		"1. madeUpTopic\n2. landlordTenant\n3. taxation",
		"1. taxation\n2. employmentDisputes\n3. landlordTenant",
	}}
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), llm, common.GetLogger())
	require.NoError(t, err)

	ranked, err := svc.Classify(context.Background(), "tax question")
	require.NoError(t, err)
	assert.Equal(t, []string{"taxation", "employmentDisputes", "landlordTenant"}, ranked)
	assert.Equal(t, 2, llm.calls)
}

func TestClassifyRejectsIncompleteRanking(t *testing.T) {
	llm := &fakeChatService{responses: []string{"1. taxation"}}
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), llm, common.GetLogger())
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), "tax question")
	assert.Error(t, err)
}

func TestClassifyRejectsDuplicateRanking(t *testing.T) {
	llm := &fakeChatService{responses: []string{"1. taxation\n2. taxation\n3. landlordTenant"}}
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), llm, common.GetLogger())
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), "tax question")
	assert.Error(t, err)
}

func TestClassifyRejectsEmptyQuery(t *testing.T) {
	svc, err := NewService(writeTaxonomy(t, testTaxonomy), &fakeChatService{responses: []string{"x"}}, common.GetLogger())
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), "   ")
	assert.Error(t, err)
}
