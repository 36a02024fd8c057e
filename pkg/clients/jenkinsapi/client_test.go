package jenkinsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
	"github.com/stretchr/testify/assert"
)

func getClientConfig(serverURL string) *api.APIConfig {
	config := &api.APIConfig{
		Jenkins: &api.JenkinsConfig{
			ServerURL: serverURL,
		},
		Scrape: &api.ScrapeConfig{},
	}
	config.SetDefaults()

	return config
}

func TestGetJobs(t *testing.T) {

	t.Run("ReturnsJobsFromJobListEndpoint", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/json", r.URL.Path)
			assert.Equal(t, "jobs[_class,name,fullName,url]", r.URL.Query().Get("tree"))

			fmt.Fprintln(w, `{"jobs":[{"_class":"hudson.model.FreeStyleProject","name":"build-app","fullName":"build-app","url":"http://jenkins/job/build-app/"}]}`)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))

		// act
		jobs, err := client.GetJobs(context.Background())

		assert.Nil(t, err)
		assert.Equal(t, 1, len(jobs))
		assert.Equal(t, "build-app", jobs[0].JobName())
	})

	t.Run("TraversesFoldersAndReturnsLeafJobs", func(t *testing.T) {

		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/json":
				fmt.Fprintf(w, `{"jobs":[{"_class":"com.cloudbees.hudson.plugins.folder.Folder","name":"team-a","url":"%v/job/team-a/"},{"_class":"hudson.model.FreeStyleProject","name":"build-app","url":"%v/job/build-app/"}]}`, server.URL, server.URL)
			case "/job/team-a/api/json":
				fmt.Fprintln(w, `{"jobs":[{"_class":"org.jenkinsci.plugins.workflow.job.WorkflowJob","name":"deploy-app","fullName":"team-a/deploy-app","url":"http://jenkins/job/team-a/job/deploy-app/"}]}`)
			default:
				http.NotFound(w, r)
			}
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))

		// act
		jobs, err := client.GetJobs(context.Background())

		assert.Nil(t, err)
		assert.Equal(t, 2, len(jobs))
		assert.Equal(t, "team-a/deploy-app", jobs[0].JobName())
		assert.Equal(t, "build-app", jobs[1].JobName())
	})

	t.Run("ReturnsErrorIfAFolderListingFails", func(t *testing.T) {

		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/json":
				fmt.Fprintf(w, `{"jobs":[{"_class":"jenkins.branch.OrganizationFolder","name":"team-a","url":"%v/job/team-a/"}]}`, server.URL)
			default:
				http.Error(w, "boom", http.StatusInternalServerError)
			}
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))

		// act
		_, err := client.GetJobs(context.Background())

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorForNonOKStatusCode", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))

		// act
		_, err := client.GetJobs(context.Background())

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorForMalformedResponseBody", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `<html>this is not json</html>`)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))

		// act
		_, err := client.GetJobs(context.Background())

		assert.NotNil(t, err)
	})

	t.Run("AddsBasicAuthenticationWhenUsernameIsConfigured", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "ci-user", username)
			assert.Equal(t, "secret", password)

			fmt.Fprintln(w, `{"jobs":[]}`)
		}))
		defer server.Close()

		config := getClientConfig(server.URL)
		config.Jenkins.Username = "ci-user"
		config.Jenkins.Password = "secret"

		client := NewClient(config)

		// act
		_, err := client.GetJobs(context.Background())

		assert.Nil(t, err)
	})
}

func TestGetBuild(t *testing.T) {

	t.Run("ReturnsBuildForStatusSelector", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/job/build-app/lastBuild/api/json", r.URL.Path)

			fmt.Fprintln(w, `{"building":false,"number":42,"duration":1200,"result":"SUCCESS","timestamp":1700000000000,"actions":[{"queuingDurationMillis":250,"totalDurationMillis":1450}]}`)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))
		job := Job{Name: "build-app", URL: server.URL + "/job/build-app/"}

		// act
		build, err := client.GetBuild(context.Background(), job, "lastBuild")

		assert.Nil(t, err)
		if assert.NotNil(t, build) {
			assert.Equal(t, false, *build.Building)
			assert.Equal(t, int64(1200), *build.Duration)
			assert.Equal(t, "SUCCESS", *build.Result)
			assert.Equal(t, int64(1700000000000), *build.Timestamp)
			assert.Equal(t, int64(250), *build.Actions[0].QueuingDurationMillis)
		}
	})

	t.Run("ReturnsNilBuildWithoutErrorWhenJobHasNoBuildForSelector", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))
		job := Job{Name: "build-app", URL: server.URL + "/job/build-app/"}

		// act
		build, err := client.GetBuild(context.Background(), job, "lastStableBuild")

		assert.Nil(t, err)
		assert.Nil(t, build)
	})

	t.Run("LeavesAbsentFieldsNil", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"building":true,"number":43,"result":null,"timestamp":1700000005000}`)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))
		job := Job{Name: "build-app", URL: server.URL + "/job/build-app/"}

		// act
		build, err := client.GetBuild(context.Background(), job, "lastBuild")

		assert.Nil(t, err)
		if assert.NotNil(t, build) {
			assert.Equal(t, true, *build.Building)
			assert.Nil(t, build.Result)
			assert.Nil(t, build.Duration)
		}
	})

	t.Run("ReturnsErrorForNonOKStatusCode", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))
		job := Job{Name: "build-app", URL: server.URL + "/job/build-app/"}

		// act
		build, err := client.GetBuild(context.Background(), job, "lastBuild")

		assert.NotNil(t, err)
		assert.Nil(t, build)
	})
}

func TestGetBuilds(t *testing.T) {

	t.Run("ReturnsRecordedBuildsWithNumberAndResult", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/job/build-app/api/json", r.URL.Path)
			assert.Equal(t, "builds[number,result]", r.URL.Query().Get("tree"))

			fmt.Fprintln(w, `{"builds":[{"number":42,"result":"SUCCESS"},{"number":41,"result":"FAILURE"},{"number":40,"result":null}]}`)
		}))
		defer server.Close()

		client := NewClient(getClientConfig(server.URL))
		job := Job{Name: "build-app", URL: server.URL + "/job/build-app/"}

		// act
		builds, err := client.GetBuilds(context.Background(), job)

		assert.Nil(t, err)
		assert.Equal(t, 3, len(builds))
		assert.Equal(t, "SUCCESS", *builds[0].Result)
		assert.Nil(t, builds[2].Result)
	})
}
