package acceptance

import (
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/technopolitica/loadouts/internal/domain"
	. "github.com/technopolitica/loadouts/test/acceptance/matchers"
	"github.com/technopolitica/loadouts/test/acceptance/testutils"
)

func postComment(collectionID string, body string) (comment domain.CommentItem) {
	res := apiClient.Post("/comments", map[string]any{"collectionId": collectionID, "body": body})
	Expect(res).To(HaveHTTPStatus(http.StatusCreated))
	testutils.ReadData(res, &comment)
	return
}

func notificationsOfType(kind domain.NotificationType) (items []domain.NotificationItem) {
	for _, item := range fetchNotifications("/notifications").Items {
		if item.Type == kind {
			items = append(items, item)
		}
	}
	return
}

var _ = Describe("Comments", func() {
	var owner, commenter testutils.ProfileFixture
	var loadout testutils.LoadoutFixture

	BeforeEach(func(ctx context.Context) {
		owner = fixtures.Profile(ctx, "owner", "Owner")
		commenter = fixtures.Profile(ctx, "commenter", "Commenter")
		loadout = fixtures.Loadout(ctx, owner.ID, "Desk setup", time.Now().Add(-time.Hour), true)
	})

	It("notifies the owner about every comment", func() {
		apiClient.AuthenticateAs(commenter.ID)
		first := postComment(loadout.ID.String(), "Love the lamp")
		second := postComment(loadout.ID.String(), "Where is the chair from?")

		apiClient.AuthenticateAs(owner.ID)
		comments := notificationsOfType(domain.NotificationComment)
		Expect(comments).To(HaveLen(2))
		var entityIDs []string
		for _, item := range comments {
			Expect(item.EntityType).To(Equal("comment"))
			Expect(item.Actor.Handle).To(HaveValue(Equal("commenter")))
			Expect(item.EntityID).NotTo(BeNil())
			entityIDs = append(entityIDs, *item.EntityID)
		}
		Expect(entityIDs).To(ConsistOf(first.ID, second.ID))
	})

	It("does not notify owners about their own comments", func() {
		apiClient.AuthenticateAs(owner.ID)
		postComment(loadout.ID.String(), "Thanks for looking")

		Expect(notificationsOfType(domain.NotificationComment)).To(BeEmpty())
	})

	It("lets only the author edit or delete a comment", func() {
		apiClient.AuthenticateAs(commenter.ID)
		comment := postComment(loadout.ID.String(), "First!")

		apiClient.AuthenticateAs(owner.ID)
		Expect(apiClient.Delete("/comments/" + comment.ID)).To(HaveAPIError(http.StatusForbidden, domain.ApiErrorForbidden))

		apiClient.AuthenticateAs(commenter.ID)
		Expect(apiClient.Delete("/comments/" + comment.ID)).To(HaveHTTPStatus(http.StatusOK))
	})

	It("notifies the owner once however often a like is toggled", func() {
		apiClient.AuthenticateAs(commenter.ID)
		for n := 0; n < 3; n++ {
			Expect(apiClient.Post("/likes", map[string]any{"collectionId": loadout.ID.String()})).To(HaveHTTPStatus(http.StatusOK))
		}

		apiClient.AuthenticateAs(owner.ID)
		likes := notificationsOfType(domain.NotificationLike)
		Expect(likes).To(HaveLen(1))
		Expect(likes[0].EntityID).To(HaveValue(Equal(loadout.ID.String())))
	})
})
