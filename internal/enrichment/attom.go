package enrichment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

// attomResponse is the subset of the ATTOM property/detail payload we read.
type attomResponse struct {
	Status struct {
		Msg   string `json:"msg"`
		Code  int    `json:"code"`
		Total int    `json:"total"`
	} `json:"status"`
	Property []attomProperty `json:"property"`
}

type attomProperty struct {
	Identifier struct {
		APN string `json:"apn"`
	} `json:"identifier"`
	Area struct {
		CountySecSubd string `json:"countrysecsubd"`
	} `json:"area"`
	Address struct {
		Line1       string `json:"line1"`
		Locality    string `json:"locality"`
		CountrySubd string `json:"countrySubd"`
		Postal1     string `json:"postal1"`
	} `json:"address"`
	Summary struct {
		YearBuilt *int `json:"yearbuilt"`
	} `json:"summary"`
	Lot struct {
		LotSize2 *float64 `json:"lotsize2"`
	} `json:"lot"`
	Building struct {
		Size struct {
			LivingSize *float64 `json:"livingsize"`
		} `json:"size"`
		Rooms struct {
			Beds       *int     `json:"beds"`
			BathsFull  *int     `json:"bathsfull"`
			BathsTotal *float64 `json:"bathstotal"`
		} `json:"rooms"`
		Construction struct {
			Condition string `json:"condition"`
		} `json:"construction"`
		Summary struct {
			View string `json:"view"`
		} `json:"summary"`
		Parking struct {
			GarageType string `json:"garagetype"`
		} `json:"parking"`
		Interior struct {
			BsmtSize *float64 `json:"bsmtsize"`
		} `json:"interior"`
	} `json:"building"`
}

type attomClient struct {
	client
}

// NewAttomClient creates a PropertyLookup backed by the ATTOM property detail API.
// An empty apiKey yields a client that fails every call with ReasonNotConfigured.
func NewAttomClient(apiKey string, opts ...Option) PropertyLookup {
	return &attomClient{client: newClient(apiKey, DefaultAttomURL, opts)}
}

func (a *attomClient) LookupProperty(ctx context.Context, addr Address) (*PropertyDetails, error) {
	if a.apiKey == "" {
		return nil, &LookupError{Reason: ReasonNotConfigured}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, &LookupError{Reason: ReasonRequest, Err: eris.Wrap(err, "attom: rate limit")}
	}

	params := url.Values{
		"address1": {addr.Street},
		"address2": {addr.Locality()},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &LookupError{Reason: ReasonRequest, Err: eris.Wrap(err, "attom: build request")}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("APIKey", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{Reason: ReasonRequest, Err: eris.Wrap(err, "attom: request")}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LookupError{Reason: ReasonRequest, Err: eris.Wrap(err, "attom: read body")}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{
			Reason:     ReasonHTTPStatus,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 200),
		}
	}

	var out attomResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &LookupError{Reason: ReasonDecode, Err: eris.Wrap(err, "attom: parse response")}
	}

	if out.Status.Code != 0 {
		return nil, &LookupError{Reason: ReasonAPIStatus, StatusCode: out.Status.Code, Message: out.Status.Msg}
	}
	if out.Status.Total == 0 || len(out.Property) == 0 {
		return nil, &LookupError{Reason: ReasonNoResults, Message: addr.OneLine()}
	}

	return detailsFromAttom(out.Property[0]), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
