package boss

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-jobapply-automation/internal/platform"
)

func TestBuildSearchURL(t *testing.T) {
	spec := platform.SearchSpec{
		City:       "上海",
		Salary:     "20-50K",
		Experience: "3-5年",
		Degree:     "本科",
	}
	url := buildSearchURL("golang", spec)

	assert.Equal(t, "https://www.zhipin.com/web/geek/jobs?query=golang&city=101020100&salary=406&experience=105&degree=203", url)
}

func TestBuildSearchURLSkipsUnknownValues(t *testing.T) {
	spec := platform.SearchSpec{City: "火星", Salary: "不限"}
	url := buildSearchURL("后端", spec)

	assert.Equal(t, "https://www.zhipin.com/web/geek/jobs?query=%E5%90%8E%E7%AB%AF", url)
}

func TestBuildSearchURLEscapesKeyword(t *testing.T) {
	url := buildSearchURL("C++ & Go", platform.SearchSpec{})

	assert.Equal(t, "https://www.zhipin.com/web/geek/jobs?query=C%2B%2B+%26+Go", url)
}

func TestExternalID(t *testing.T) {
	assert.Equal(t, "abc123", externalID("/job_detail/abc123.html"))
	assert.Equal(t, "abc123", externalID("abc123.html"))
	assert.Equal(t, "", externalID(""))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://www.zhipin.com/job_detail/abc123.html", absoluteURL("/job_detail/abc123.html"))
	assert.Equal(t, "https://www.zhipin.com/job_detail/abc123.html", absoluteURL("https://www.zhipin.com/job_detail/abc123.html"))
	assert.Equal(t, "", absoluteURL(""))
}
