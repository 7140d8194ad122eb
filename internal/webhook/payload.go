package webhook

// githubEvent is the subset of an issue_comment delivery we read.
type githubEvent struct {
	Action  string `json:"action"`
	Comment *struct {
		Body string `json:"body"`
	} `json:"comment"`
	Issue *struct {
		PullRequest *struct {
			HTMLURL string `json:"html_url"`
		} `json:"pull_request"`
	} `json:"issue"`
}

// comment returns the PR URL and comment body of a new pull request
// comment, or ok == false for anything else.
func (e *githubEvent) comment() (prURL, body string, ok bool) {
	if e.Action != "created" || e.Comment == nil {
		return "", "", false
	}
	if e.Issue == nil || e.Issue.PullRequest == nil || e.Issue.PullRequest.HTMLURL == "" {
		return "", "", false
	}
	return e.Issue.PullRequest.HTMLURL, e.Comment.Body, true
}

// gitlabEvent is the subset of a Note Hook delivery we read.
type gitlabEvent struct {
	ObjectAttributes *struct {
		NoteableType string `json:"noteable_type"`
		Note         string `json:"note"`
	} `json:"object_attributes"`
	MergeRequest *struct {
		URL string `json:"url"`
	} `json:"merge_request"`
}

func (e *gitlabEvent) comment() (prURL, body string, ok bool) {
	if e.ObjectAttributes == nil || e.ObjectAttributes.NoteableType != "MergeRequest" {
		return "", "", false
	}
	if e.MergeRequest == nil || e.MergeRequest.URL == "" {
		return "", "", false
	}
	return e.MergeRequest.URL, e.ObjectAttributes.Note, true
}
