package jenkinsapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	"github.com/sethgrid/pester"
)

// ErrNotFound indicates the jenkins api responded with a 404 for the requested resource
var ErrNotFound = errors.New("jenkins api resource not found")

const (
	jobsTreeQuery   = "jobs[_class,name,fullName,url]"
	buildTreeQuery  = "building,number,duration,result,timestamp,actions[queuingDurationMillis,totalDurationMillis,skipCount,failCount,totalCount]"
	buildsTreeQuery = "builds[number,result]"
)

// Client is the interface for communicating with the jenkins api
//
//go:generate mockgen -package=jenkinsapi -destination ./mock.go -source=client.go
type Client interface {
	GetJobs(ctx context.Context) (jobs []Job, err error)
	GetBuild(ctx context.Context, job Job, status string) (build *Build, err error)
	GetBuilds(ctx context.Context, job Job) (builds []Build, err error)
}

// NewClient returns a new jenkinsapi.Client to communicate with the jenkins api
func NewClient(config *api.APIConfig) Client {

	transport := &http.Transport{}
	if config.Jenkins.AllowInsecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	httpClient := pester.NewExtendedClient(&http.Client{Transport: &nethttp.Transport{RoundTripper: transport}})
	httpClient.MaxRetries = config.Jenkins.RequestRetries
	httpClient.Backoff = pester.ExponentialJitterBackoff
	httpClient.KeepLog = true
	httpClient.Timeout = time.Duration(config.Jenkins.RequestTimeoutSeconds) * time.Second

	return &client{
		config:     config,
		httpClient: httpClient,
	}
}

type client struct {
	config     *api.APIConfig
	httpClient *pester.Client
}

// GetJobs lists all leaf jobs known to the jenkins server, traversing folders recursively
func (c *client) GetJobs(ctx context.Context) (jobs []Job, err error) {
	return c.getJobsForURL(ctx, fmt.Sprintf("%v/api/json", c.config.Jenkins.ServerURL))
}

func (c *client) getJobsForURL(ctx context.Context, apiURL string) (jobs []Job, err error) {

	var jobsResponse JobsResponse
	err = c.callAPI(ctx, fmt.Sprintf("%v?tree=%v", apiURL, url.QueryEscape(jobsTreeQuery)), &jobsResponse)
	if err != nil {
		return
	}

	for _, job := range jobsResponse.Jobs {
		if job.IsFolder() {
			var nestedJobs []Job
			nestedJobs, err = c.getJobsForURL(ctx, fmt.Sprintf("%vapi/json", ensureTrailingSlash(job.URL)))
			if err != nil {
				return
			}
			jobs = append(jobs, nestedJobs...)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// GetBuild retrieves the build for the given status selector of a job; it returns
// a nil build without error when the job has no build for that selector
func (c *client) GetBuild(ctx context.Context, job Job, status string) (build *Build, err error) {

	buildURL := fmt.Sprintf("%v%v/api/json?tree=%v", ensureTrailingSlash(job.URL), status, url.QueryEscape(buildTreeQuery))

	var buildResponse Build
	err = c.callAPI(ctx, buildURL, &buildResponse)
	if errors.Is(err, ErrNotFound) {
		// the job has never produced a build for this selector
		return nil, nil
	}
	if err != nil {
		return
	}

	return &buildResponse, nil
}

// GetBuilds retrieves number and result of all recorded builds of a job in a single call
func (c *client) GetBuilds(ctx context.Context, job Job) (builds []Build, err error) {

	buildsURL := fmt.Sprintf("%vapi/json?tree=%v", ensureTrailingSlash(job.URL), url.QueryEscape(buildsTreeQuery))

	var buildsResponse BuildsResponse
	err = c.callAPI(ctx, buildsURL, &buildsResponse)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return
	}

	return buildsResponse.Builds, nil
}

func (c *client) callAPI(ctx context.Context, requestURL string, target interface{}) (err error) {

	request, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return
	}

	// collect additional information on setting up connections
	var ht *nethttp.Tracer
	if span := opentracing.SpanFromContext(ctx); span != nil {
		request, ht = nethttp.TraceRequest(span.Tracer(), request)
	}

	if c.config.Jenkins.Username != "" {
		request.SetBasicAuth(c.config.Jenkins.Username, c.config.Jenkins.Password)
	}

	// perform actual request
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("Calling jenkins api url %v failed: %w", requestURL, err)
	}
	defer response.Body.Close()
	if ht != nil {
		ht.Finish()
	}

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("Jenkins api url %v responded with status code 404: %w", requestURL, ErrNotFound)
	}
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("Jenkins api url %v responded with status code %v", requestURL, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("Reading response body for jenkins api url %v failed: %w", requestURL, err)
	}

	// unmarshal json body
	err = json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("Unmarshalling response body for jenkins api url %v failed: %w", requestURL, err)
	}

	return nil
}

func ensureTrailingSlash(jobURL string) string {
	return strings.TrimRight(jobURL, "/") + "/"
}
