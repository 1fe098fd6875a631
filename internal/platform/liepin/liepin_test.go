package liepin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-jobapply-automation/internal/platform"
)

func TestBuildSearchURL(t *testing.T) {
	spec := platform.SearchSpec{
		City:       "北京",
		Salary:     "20-30万",
		Experience: "3-5年",
		Degree:     "本科",
	}
	url := buildSearchURL("Go开发", spec)

	assert.Equal(t, "https://www.liepin.com/zhaopin/?key=Go%E5%BC%80%E5%8F%91&dqs=010&salaryCode=3&workYearCode=3$5&eduLevel=40", url)
}

func TestBuildSearchURLOmitsUnknowns(t *testing.T) {
	url := buildSearchURL("golang", platform.SearchSpec{City: "不限"})

	assert.Equal(t, "https://www.liepin.com/zhaopin/?key=golang", url)
}

func TestExternalID(t *testing.T) {
	assert.Equal(t, "1234567", externalID("/job/1234567.shtml"))
	assert.Equal(t, "1234567", externalID("https://www.liepin.com/job/1234567.shtml?d_source=1"))
	assert.Equal(t, "1234567", externalID("/job/1234567?from=list"))
	assert.Equal(t, "", externalID("/company/999.html"))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://www.liepin.com/job/1.shtml", absoluteURL("/job/1.shtml"))
	assert.Equal(t, "https://x.com/job/1", absoluteURL("https://x.com/job/1"))
	assert.Equal(t, "", absoluteURL(""))
}
