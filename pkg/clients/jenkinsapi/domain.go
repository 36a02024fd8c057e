package jenkinsapi

// Jenkins job classes that act as containers for other jobs and need to be
// traversed rather than scraped themselves.
const (
	FolderClass             = "com.cloudbees.hudson.plugins.folder.Folder"
	OrganizationFolderClass = "jenkins.branch.OrganizationFolder"
	MultiBranchProjectClass = "org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject"
	WorkflowJobClass        = "org.jenkinsci.plugins.workflow.job.WorkflowJob"
	FreeStyleProjectClass   = "hudson.model.FreeStyleProject"
)

// Build results jenkins reports for a finished build
const (
	BuildResultSuccess  = "SUCCESS"
	BuildResultFailure  = "FAILURE"
	BuildResultUnstable = "UNSTABLE"
	BuildResultAborted  = "ABORTED"
)

// BuildResults lists the build results exported as one-hot series
var BuildResults = []string{
	BuildResultSuccess,
	BuildResultFailure,
	BuildResultUnstable,
	BuildResultAborted,
}

// JobsResponse is used to unmarshal the response of the jenkins job list api
type JobsResponse struct {
	Jobs []Job `json:"jobs"`
}

// Job is a single job as returned by the jenkins job list api
type Job struct {
	Class    string `json:"_class"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	URL      string `json:"url"`
}

// JobName returns the full name of the job if jenkins provides one, otherwise the plain name
func (j *Job) JobName() string {
	if j.FullName != "" {
		return j.FullName
	}
	return j.Name
}

// IsFolder indicates the job is a container that holds other jobs
func (j *Job) IsFolder() bool {
	return j.Class == FolderClass || j.Class == OrganizationFolderClass || j.Class == MultiBranchProjectClass
}

// TracksRuns indicates the job type keeps a list of runs that can be counted
func (j *Job) TracksRuns() bool {
	return j.Class == WorkflowJobClass || j.Class == FreeStyleProjectClass
}

// Build is used to unmarshal the response of the jenkins build api; jenkins
// omits or nulls fields depending on the state of the build, so every field
// is optional
type Build struct {
	Building  *bool         `json:"building"`
	Number    *int64        `json:"number"`
	Duration  *int64        `json:"duration"`
	Result    *string       `json:"result"`
	Timestamp *int64        `json:"timestamp"`
	Actions   []BuildAction `json:"actions"`
}

// BuildAction is used to unmarshal the timing and test count action entries of a build
type BuildAction struct {
	QueuingDurationMillis *int64 `json:"queuingDurationMillis"`
	TotalDurationMillis   *int64 `json:"totalDurationMillis"`
	SkipCount             *int64 `json:"skipCount"`
	FailCount             *int64 `json:"failCount"`
	TotalCount            *int64 `json:"totalCount"`
}

// BuildsResponse is used to unmarshal the recorded builds of a job
type BuildsResponse struct {
	Builds []Build `json:"builds"`
}
