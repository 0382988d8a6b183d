package facebook

import "time"

// graphErrorBody is the error envelope every Graph endpoint can return.
type graphErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Subcode int    `json:"error_subcode"`
	} `json:"error"`
}

type countSummary struct {
	Summary struct {
		TotalCount int `json:"total_count"`
	} `json:"summary"`
}

// apiPost mirrors one /feed entry with summarized engagement counts.
type apiPost struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	CreatedTime string        `json:"created_time"`
	FullPicture string        `json:"full_picture"`
	Comments    *countSummary `json:"comments"`
	Likes       *countSummary `json:"likes"`
	Shares      *struct {
		Count int `json:"count"`
	} `json:"shares"`
}

// apiComment mirrors one /comments entry.
type apiComment struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	From    *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"from"`
	CreatedTime string `json:"created_time"`
	CanReply    bool   `json:"can_reply"`
}

type apiProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture *struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
	FollowersCount int    `json:"followers_count"`
	FanCount       int    `json:"fan_count"`
	About          string `json:"about"`
}

type publishResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// graphTimeLayout is the timestamp format Graph uses in created_time.
const graphTimeLayout = "2006-01-02T15:04:05-0700"

func parseGraphTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(graphTimeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
